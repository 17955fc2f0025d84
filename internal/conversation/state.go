package conversation

import "strings"

// Stage identifies where a call currently sits in the collection flow.
type Stage string

const (
	StageGreeting     Stage = "greeting"
	StageVerification Stage = "verification"
	StageDisclosure   Stage = "disclosure"
	StageNegotiation  Stage = "negotiation"
	StageClosing      Stage = "closing"
)

// Turn roles mirror the chat transcript stored per call.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single transcript entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PaymentPlan is a repayment option offered to the customer. The description
// carries the plan amount as a rupee figure, which the commitment detector
// parses back out when the customer picks the plan.
type PaymentPlan struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CallState is the full per-call session record. It is persisted as a single
// JSON document so a turn either commits in full or not at all.
type CallState struct {
	CustomerID        string  `json:"customer_id"`
	CustomerName      string  `json:"customer_name"`
	Phone             string  `json:"phone"`
	LoanID            string  `json:"loan_id"`
	OutstandingAmount float64 `json:"outstanding_amount"`
	DueDate           string  `json:"due_date"`
	Language          string  `json:"language"`

	IsVerified     bool `json:"is_verified"`
	VerifyAttempts int  `json:"verify_attempts"`

	Turns        []Turn        `json:"turns"`
	OfferedPlans []PaymentPlan `json:"offered_plans,omitempty"`

	SelectedPlan  *PaymentPlan `json:"selected_plan,omitempty"`
	PTPAmount     float64      `json:"ptp_amount,omitempty"`
	PTPDate       string       `json:"ptp_date,omitempty"`
	PTPID         string       `json:"ptp_id,omitempty"`
	DisputeID     string       `json:"dispute_id,omitempty"`
	DisputeReason string       `json:"dispute_reason,omitempty"`

	PaymentStatus string `json:"payment_status,omitempty"`
	Stage         Stage  `json:"stage"`
	AwaitingUser  bool   `json:"awaiting_user"`
	IsComplete    bool   `json:"is_complete"`
	CallOutcome   string `json:"call_outcome,omitempty"`
	CallSummary   string `json:"call_summary,omitempty"`
}

// Clone deep-copies the state so a turn can be applied tentatively and only
// persisted once every side effect has succeeded.
func (s *CallState) Clone() *CallState {
	if s == nil {
		return nil
	}
	out := *s
	out.Turns = append([]Turn(nil), s.Turns...)
	out.OfferedPlans = append([]PaymentPlan(nil), s.OfferedPlans...)
	if s.SelectedPlan != nil {
		plan := *s.SelectedPlan
		out.SelectedPlan = &plan
	}
	return &out
}

func (s *CallState) appendTurn(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
}

// FirstName returns the customer's given name for use in replies.
func (s *CallState) FirstName() string {
	fields := strings.Fields(s.CustomerName)
	if len(fields) == 0 {
		return s.CustomerName
	}
	return fields[0]
}

// LastUserTurn returns the content of the most recent user turn, or "".
func (s *CallState) LastUserTurn() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Content
		}
	}
	return ""
}

// patch captures the state changes produced by one stage handler. Handlers
// never mutate CallState directly; the engine applies the patch after the
// handler (and any persistence it performed) has succeeded.
type patch struct {
	reply string

	stage         Stage
	awaitingUser  bool
	isComplete    bool
	paymentStatus string

	offeredPlans []PaymentPlan
	selectedPlan *PaymentPlan

	ptpAmount float64
	ptpDate   string
	ptpID     string

	disputeID     string
	disputeReason string

	verified       bool
	verifyAttempts int

	callOutcome string
	callSummary string

	setVerified bool
	setAttempts bool

	// continueFlow tells the engine to run the next stage handler on the
	// same user input instead of returning to the caller.
	continueFlow bool
}

func (p *patch) apply(s *CallState) {
	if p.reply != "" {
		s.appendTurn(RoleAssistant, p.reply)
	}
	if p.stage != "" {
		s.Stage = p.stage
	}
	s.AwaitingUser = p.awaitingUser
	if p.isComplete {
		s.IsComplete = true
	}
	if p.paymentStatus != "" {
		s.PaymentStatus = p.paymentStatus
	}
	if p.offeredPlans != nil {
		s.OfferedPlans = p.offeredPlans
	}
	if p.selectedPlan != nil {
		plan := *p.selectedPlan
		s.SelectedPlan = &plan
	}
	if p.ptpAmount > 0 {
		s.PTPAmount = p.ptpAmount
	}
	if p.ptpDate != "" {
		s.PTPDate = p.ptpDate
	}
	if p.ptpID != "" {
		s.PTPID = p.ptpID
	}
	if p.disputeID != "" {
		s.DisputeID = p.disputeID
	}
	if p.disputeReason != "" {
		s.DisputeReason = p.disputeReason
	}
	if p.setVerified {
		s.IsVerified = p.verified
	}
	if p.setAttempts {
		s.VerifyAttempts = p.verifyAttempts
	}
	if p.callOutcome != "" {
		s.CallOutcome = p.callOutcome
	}
	if p.callSummary != "" {
		s.CallSummary = p.callSummary
	}
}
