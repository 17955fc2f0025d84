package conversation

import "context"

// StartRequest opens a new collection call for the customer holding the
// given phone number.
type StartRequest struct {
	Phone string `json:"phone"`
}

// TurnRequest carries one customer utterance into an existing call.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Response is the call snapshot returned after every operation. Turns holds
// the full transcript so far; Reply is the assistant text produced by this
// operation, for callers that only need the latest message.
type Response struct {
	SessionID    string        `json:"session_id"`
	Reply        string        `json:"reply"`
	Turns        []Turn        `json:"turns"`
	Stage        Stage         `json:"stage"`
	AwaitingUser bool          `json:"awaiting_user"`
	IsComplete   bool          `json:"is_complete"`
	OfferedPlans []PaymentPlan `json:"offered_plans,omitempty"`
	PTPID        string        `json:"ptp_id,omitempty"`
	CallOutcome  string        `json:"call_outcome,omitempty"`
}

// Service is the conversation entrypoint shared by the HTTP handler and the
// queue-backed orchestrator.
type Service interface {
	StartCall(ctx context.Context, req StartRequest) (*Response, error)
	ProcessTurn(ctx context.Context, req TurnRequest) (*Response, error)
}
