package conversation

import "context"

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobType string

const (
	jobTypeStart jobType = "start"
	jobTypeTurn  jobType = "turn"
)

type queuePayload struct {
	ID    string       `json:"id"`
	Kind  jobType      `json:"kind"`
	Start StartRequest `json:"start,omitempty"`
	Turn  TurnRequest  `json:"turn,omitempty"`
}
