package records

import "context"

// CallRecord summarizes a finished (or abandoned) collection call.
type CallRecord struct {
	CustomerID    string `json:"customer_id"`
	Outcome       string `json:"outcome"`
	PaymentStatus string `json:"payment_status"`
	Summary       string `json:"summary"`
}

// PTP is a recorded promise to pay: a commitment to a specific amount by a
// specific date, optionally under a named plan.
type PTP struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	PlanType   string  `json:"plan_type"`
}

// Dispute is a debtor's claim that the debt is not theirs or is incorrect.
type Dispute struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
}

// Sink persists call outcomes. The returned ids are embedded in user-facing
// messages, so SavePTP and SaveDispute must complete (or fail loudly) before
// the reply is sent.
type Sink interface {
	SaveCallRecord(ctx context.Context, record CallRecord) error
	SavePTP(ctx context.Context, customerID string, amount float64, date, planType string) (string, error)
	SaveDispute(ctx context.Context, customerID, reason string) (string, error)
}
