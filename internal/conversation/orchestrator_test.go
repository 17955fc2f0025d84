package conversation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

type stubService struct {
	starts atomic.Int64
	turns  atomic.Int64
	err    error
}

func (s *stubService) StartCall(_ context.Context, req StartRequest) (*Response, error) {
	s.starts.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &Response{SessionID: "session-1", Reply: "hello " + req.Phone}, nil
}

func (s *stubService) ProcessTurn(_ context.Context, req TurnRequest) (*Response, error) {
	s.turns.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &Response{SessionID: req.SessionID, Reply: "echo: " + req.Message}, nil
}

func TestOrchestratorRoundTrip(t *testing.T) {
	svc := &stubService{}
	o := NewOrchestrator(svc, NewMemoryQueue(16), logging.Default(), WithWorkerCount(1))
	defer func() { _ = o.Shutdown(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := o.StartCall(ctx, StartRequest{Phone: "9876543210"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	if resp.SessionID != "session-1" {
		t.Errorf("resp = %+v", resp)
	}

	resp, err = o.ProcessTurn(ctx, TurnRequest{SessionID: "session-1", Message: "yes"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if resp.Reply != "echo: yes" {
		t.Errorf("reply = %q", resp.Reply)
	}

	if got := svc.starts.Load(); got != 1 {
		t.Errorf("starts = %d, want 1", got)
	}
	if got := svc.turns.Load(); got != 1 {
		t.Errorf("turns = %d, want 1", got)
	}
}

func TestOrchestratorPropagatesServiceError(t *testing.T) {
	svc := &stubService{err: ErrCallComplete}
	o := NewOrchestrator(svc, NewMemoryQueue(16), logging.Default(), WithWorkerCount(1))
	defer func() { _ = o.Shutdown(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := o.ProcessTurn(ctx, TurnRequest{SessionID: "s", Message: "m"})
	if !errors.Is(err, ErrCallComplete) {
		t.Errorf("err = %v, want ErrCallComplete", err)
	}
}

func TestOrchestratorShutdownStopsWorkers(t *testing.T) {
	svc := &stubService{}
	o := NewOrchestrator(svc, NewMemoryQueue(16), logging.Default(), WithWorkerCount(2))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
