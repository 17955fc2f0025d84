package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/recoverly/collections-ai-agent/internal/customers"
	"github.com/recoverly/collections-ai-agent/internal/records"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

func testEngine(t *testing.T) (*Engine, *records.MemorySink) {
	t.Helper()
	sink := records.NewMemorySink()
	repo := customers.NewInMemoryRepository(customers.SampleCustomers()...)
	engine := NewEngine(repo, NewMemorySessionStore(), sink, logging.Default(),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }),
	)
	return engine, sink
}

func mustTurn(t *testing.T, e *Engine, sessionID, message string) *Response {
	t.Helper()
	resp, err := e.ProcessTurn(context.Background(), TurnRequest{SessionID: sessionID, Message: message})
	if err != nil {
		t.Fatalf("ProcessTurn(%q): %v", message, err)
	}
	return resp
}

func TestEngineHappyPathToPromiseToPay(t *testing.T) {
	engine, sink := testEngine(t)
	ctx := context.Background()

	start, err := engine.StartCall(ctx, StartRequest{Phone: "9876543210"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	if start.Stage != StageVerification || !start.AwaitingUser {
		t.Fatalf("start stage = %s awaiting = %v", start.Stage, start.AwaitingUser)
	}
	if !strings.Contains(start.Reply, "Rajesh Kumar") {
		t.Errorf("greeting = %q, want customer name", start.Reply)
	}

	resp := mustTurn(t, engine, start.SessionID, "yes, speaking")
	if resp.Stage != StageDisclosure {
		t.Fatalf("stage after verification = %s, want disclosure", resp.Stage)
	}
	if !strings.Contains(resp.Reply, "₹45,000") {
		t.Errorf("disclosure = %q, want the outstanding amount", resp.Reply)
	}

	resp = mustTurn(t, engine, start.SessionID, "I want a payment plan")
	if resp.Stage != StageNegotiation || !resp.AwaitingUser || resp.IsComplete {
		t.Fatalf("after plan request: stage=%s awaiting=%v complete=%v", resp.Stage, resp.AwaitingUser, resp.IsComplete)
	}
	if len(resp.OfferedPlans) != 3 {
		t.Fatalf("offered plans = %d, want 3", len(resp.OfferedPlans))
	}
	if !strings.Contains(resp.Reply, "Immediate Settlement") {
		t.Errorf("plan offer = %q, want plan names listed", resp.Reply)
	}

	resp = mustTurn(t, engine, start.SessionID, "I'll take the 3-month installment plan")
	if resp.IsComplete {
		t.Fatal("call completed before a date was given")
	}
	if !strings.Contains(resp.Reply, "When would you like to make your first payment?") {
		t.Errorf("reply = %q, want a date prompt", resp.Reply)
	}

	resp = mustTurn(t, engine, start.SessionID, "the 15th")
	if !resp.IsComplete {
		t.Fatal("call not complete after full commitment")
	}
	if resp.CallOutcome != "ptp_recorded" {
		t.Errorf("outcome = %q, want ptp_recorded", resp.CallOutcome)
	}
	if len(sink.PTPs) != 1 {
		t.Fatalf("PTPs persisted = %d, want 1", len(sink.PTPs))
	}
	ptp := sink.PTPs[0]
	if ptp.Amount != 15000 || ptp.Date != "15-06-2025" || ptp.PlanType != "3-Month Installment" {
		t.Errorf("ptp = %+v", ptp)
	}
	if resp.PTPID != ptp.ID || !strings.Contains(resp.Reply, ptp.ID) {
		t.Errorf("reply %q must quote PTP reference %q", resp.Reply, ptp.ID)
	}

	if _, err := engine.ProcessTurn(ctx, TurnRequest{SessionID: start.SessionID, Message: "hello?"}); !errors.Is(err, ErrCallComplete) {
		t.Errorf("turn after completion: err = %v, want ErrCallComplete", err)
	}
}

func TestEngineDisputePath(t *testing.T) {
	engine, sink := testEngine(t)
	ctx := context.Background()

	start, err := engine.StartCall(ctx, StartRequest{Phone: "9123456780"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}

	mustTurn(t, engine, start.SessionID, "yes, this is Priya")
	resp := mustTurn(t, engine, start.SessionID, "I never took this loan")

	if !resp.IsComplete || resp.CallOutcome != "disputed" {
		t.Fatalf("complete=%v outcome=%q, want disputed close", resp.IsComplete, resp.CallOutcome)
	}
	if len(sink.Disputes) != 1 {
		t.Fatalf("disputes persisted = %d, want 1", len(sink.Disputes))
	}
	d := sink.Disputes[0]
	if d.Reason != "I never took this loan" {
		t.Errorf("dispute reason = %q", d.Reason)
	}
	if !strings.Contains(resp.Reply, d.ID) {
		t.Errorf("reply %q must quote dispute reference %q", resp.Reply, d.ID)
	}
	if len(sink.CallRecords) != 1 || sink.CallRecords[0].Outcome != "disputed" {
		t.Errorf("call records = %+v, want one disputed record", sink.CallRecords)
	}
}

func TestEngineCallbackAndUnablePaths(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		wantOutcome string
	}{
		{"callback", "I'm busy right now, call me later", "callback"},
		{"unable", "I lost my job, I have no money at all", "unable"},
		{"paid", "I already paid this last week", "paid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, sink := testEngine(t)
			start, err := engine.StartCall(context.Background(), StartRequest{Phone: "9988776655"})
			if err != nil {
				t.Fatalf("StartCall: %v", err)
			}
			mustTurn(t, engine, start.SessionID, "yes speaking")
			resp := mustTurn(t, engine, start.SessionID, tt.message)

			if !resp.IsComplete || resp.CallOutcome != tt.wantOutcome {
				t.Fatalf("complete=%v outcome=%q, want %q", resp.IsComplete, resp.CallOutcome, tt.wantOutcome)
			}
			if len(sink.CallRecords) != 1 || sink.CallRecords[0].Outcome != tt.wantOutcome {
				t.Errorf("call records = %+v", sink.CallRecords)
			}
		})
	}
}

func TestEngineVerificationFailureEndsCall(t *testing.T) {
	engine, sink := testEngine(t)

	start, err := engine.StartCall(context.Background(), StartRequest{Phone: "9876543210"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}

	resp := mustTurn(t, engine, start.SessionID, "who is calling?")
	if resp.IsComplete {
		t.Fatal("call ended after first failed verification attempt")
	}
	if !resp.AwaitingUser {
		t.Fatal("expected a re-ask after first failed attempt")
	}

	resp = mustTurn(t, engine, start.SessionID, "you have the wrong number")
	if !resp.IsComplete || resp.CallOutcome != "verification_failed" {
		t.Fatalf("complete=%v outcome=%q, want verification_failed", resp.IsComplete, resp.CallOutcome)
	}
	if strings.Contains(resp.Reply, "45,000") {
		t.Error("debt details must not be disclosed to an unverified party")
	}
	if len(sink.CallRecords) != 1 || sink.CallRecords[0].Outcome != "verification_failed" {
		t.Errorf("call records = %+v", sink.CallRecords)
	}
}

func TestEngineInputValidation(t *testing.T) {
	engine, _ := testEngine(t)
	ctx := context.Background()

	if _, err := engine.StartCall(ctx, StartRequest{Phone: "  "}); !errors.Is(err, ErrMissingPhone) {
		t.Errorf("StartCall empty phone: err = %v, want ErrMissingPhone", err)
	}
	if _, err := engine.StartCall(ctx, StartRequest{Phone: "0000000000"}); !errors.Is(err, customers.ErrCustomerNotFound) {
		t.Errorf("StartCall unknown phone: err = %v, want ErrCustomerNotFound", err)
	}
	if _, err := engine.ProcessTurn(ctx, TurnRequest{SessionID: "nope", Message: "hi"}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ProcessTurn unknown session: err = %v, want ErrSessionNotFound", err)
	}

	start, err := engine.StartCall(ctx, StartRequest{Phone: "9876543210"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	if _, err := engine.ProcessTurn(ctx, TurnRequest{SessionID: start.SessionID, Message: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("ProcessTurn empty message: err = %v, want ErrEmptyMessage", err)
	}
}

func TestEngineFailedTurnLeavesStateUntouched(t *testing.T) {
	sink := records.NewMemorySink()
	repo := customers.NewInMemoryRepository(customers.SampleCustomers()...)
	store := NewMemorySessionStore()
	engine := NewEngine(repo, store, sink, logging.Default(),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }),
	)
	ctx := context.Background()

	start, err := engine.StartCall(ctx, StartRequest{Phone: "9876543210"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	before, err := store.Get(ctx, start.SessionID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := engine.ProcessTurn(ctx, TurnRequest{SessionID: start.SessionID, Message: ""}); err == nil {
		t.Fatal("expected an error")
	}

	after, err := store.Get(ctx, start.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Turns) != len(before.Turns) {
		t.Errorf("rejected turn mutated stored state: %d -> %d turns", len(before.Turns), len(after.Turns))
	}
}
