package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/recoverly/collections-ai-agent/internal/customers"
	"github.com/recoverly/collections-ai-agent/internal/llm"
	"github.com/recoverly/collections-ai-agent/internal/observability/metrics"
	"github.com/recoverly/collections-ai-agent/internal/records"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

var (
	// ErrEmptyMessage is returned when a turn arrives with no text.
	ErrEmptyMessage = errors.New("conversation: message cannot be empty")
	// ErrMissingPhone is returned when a start request has no phone number.
	ErrMissingPhone = errors.New("conversation: phone cannot be empty")
	// ErrCallComplete is returned for turns sent to an already finished call.
	ErrCallComplete = errors.New("conversation: call already complete")
)

// Engine drives collection calls through their stages: greet, verify
// identity, disclose the debt, negotiate a promise to pay, close. Turns for
// the same session are serialized; state is cloned, patched and written back
// in one Put so a failed turn leaves no trace.
type Engine struct {
	customers  customers.Repository
	sessions   SessionStore
	sink       records.Sink
	classifier *IntentClassifier
	plans      *PlanGenerator
	oracle     *llm.Oracle
	logger     *logging.Logger
	metrics    *metrics.CallMetrics

	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ Service = (*Engine)(nil)

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source. Tests use this to pin
// relative date resolution.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithOracle attaches a text generation oracle for free-form negotiation
// replies, plan generation and intent classification tier 2.
func WithOracle(oracle *llm.Oracle) EngineOption {
	return func(e *Engine) {
		e.oracle = oracle
	}
}

// WithIntentRules overrides the embedded keyword rule table.
func WithIntentRules(rules *IntentRules) EngineOption {
	return func(e *Engine) {
		e.classifier = NewIntentClassifier(rules, e.oracle, e.logger)
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.CallMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine wires a conversation engine. Repository, session store and
// record sink are required; everything else degrades gracefully.
func NewEngine(repo customers.Repository, sessions SessionStore, sink records.Sink, logger *logging.Logger, opts ...EngineOption) *Engine {
	if repo == nil {
		panic("conversation: customer repository cannot be nil")
	}
	if sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if sink == nil {
		panic("conversation: record sink cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	e := &Engine{
		customers: repo,
		sessions:  sessions,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		e.classifier = NewIntentClassifier(nil, e.oracle, logger)
	}
	if e.plans == nil {
		e.plans = NewPlanGenerator(e.oracle, logger)
	}
	return e
}

// StartCall looks up the customer by phone, opens a session and produces the
// greeting turn. The call then waits for the customer to confirm identity.
func (e *Engine) StartCall(ctx context.Context, req StartRequest) (*Response, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, ErrMissingPhone
	}

	customer, err := e.customers.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	state := &CallState{
		CustomerID:        customer.ID,
		CustomerName:      customer.Name,
		Phone:             customer.Phone,
		LoanID:            customer.LoanID,
		OutstandingAmount: customer.OutstandingAmount,
		DueDate:           customer.DueDate,
		Language:          customer.Language,
		Stage:             StageVerification,
		AwaitingUser:      true,
	}
	greeting := fmt.Sprintf(
		"Hello, this is Asha calling from Recoverly on behalf of your lender regarding loan account %s. Am I speaking with %s?",
		customer.LoanID, customer.Name,
	)
	state.appendTurn(RoleAssistant, greeting)

	sessionID, err := e.sessions.Create(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create session: %w", err)
	}

	e.logger.Info("call started", "session_id", sessionID, "customer_id", customer.ID)
	e.metrics.ObserveTurn(string(StageGreeting), "ok")
	return e.snapshot(sessionID, state, greeting), nil
}

// ProcessTurn applies one customer utterance to a call. Handlers run until
// the call either needs more input or has finished; the resulting state is
// persisted in a single write.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*Response, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	unlock := e.lockSession(req.SessionID)
	defer unlock()

	stored, err := e.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if stored.IsComplete {
		return nil, ErrCallComplete
	}

	started := e.now()
	state := stored.Clone()
	state.appendTurn(RoleUser, text)
	replyStart := len(state.Turns)

	// A stage handler may hand off to the next stage on the same input,
	// e.g. verification success flowing straight into disclosure. The
	// bound guards against a handler that never settles.
	for i := 0; i < 4; i++ {
		p, err := e.runStage(ctx, state)
		if err != nil {
			e.metrics.ObserveTurn(string(state.Stage), "error")
			return nil, err
		}
		p.apply(state)
		if !p.continueFlow {
			break
		}
	}

	if err := e.sessions.Put(ctx, req.SessionID, state); err != nil {
		e.metrics.ObserveTurn(string(state.Stage), "error")
		return nil, err
	}

	e.metrics.ObserveTurn(string(state.Stage), "ok")
	e.metrics.ObserveTurnLatency(string(state.Stage), e.now().Sub(started).Seconds())
	if state.IsComplete {
		e.metrics.ObserveCallCompleted(state.CallOutcome)
		e.logger.Info("call completed",
			"session_id", req.SessionID,
			"outcome", state.CallOutcome,
			"payment_status", state.PaymentStatus)
	}

	return e.snapshot(req.SessionID, state, joinReplies(state.Turns[replyStart:])), nil
}

// GetCall returns the current snapshot of a session without advancing it.
func (e *Engine) GetCall(ctx context.Context, sessionID string) (*Response, error) {
	state, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.snapshot(sessionID, state, ""), nil
}

func (e *Engine) runStage(ctx context.Context, state *CallState) (*patch, error) {
	switch state.Stage {
	case StageGreeting, StageVerification:
		return e.verify(ctx, state)
	case StageDisclosure:
		return e.disclose(ctx, state)
	case StageNegotiation:
		return e.negotiate(ctx, state)
	case StageClosing:
		return e.close(ctx, state)
	default:
		return nil, fmt.Errorf("conversation: unknown stage %q", state.Stage)
	}
}

func (e *Engine) lockSession(sessionID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (e *Engine) snapshot(sessionID string, state *CallState, reply string) *Response {
	return &Response{
		SessionID:    sessionID,
		Reply:        reply,
		Turns:        append([]Turn(nil), state.Turns...),
		Stage:        state.Stage,
		AwaitingUser: state.AwaitingUser,
		IsComplete:   state.IsComplete,
		OfferedPlans: append([]PaymentPlan(nil), state.OfferedPlans...),
		PTPID:        state.PTPID,
		CallOutcome:  state.CallOutcome,
	}
}

func joinReplies(turns []Turn) string {
	var parts []string
	for _, t := range turns {
		if t.Role == RoleAssistant {
			parts = append(parts, t.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
