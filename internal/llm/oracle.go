package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

// ErrUnavailable is the uniform signal for any oracle failure: transport
// error, timeout, safety block, or an empty/unusable completion. Callers
// take their deterministic fallback path and never surface this to the
// end user.
var ErrUnavailable = errors.New("llm: oracle unavailable")

// blockedStopReasons mark completions cut off by the provider's safety
// filters rather than finished normally.
var blockedStopReasons = []string{"SAFETY", "RECITATION", "OTHER", "DANGEROUS_CONTENT", "CONTENT_FILTERED", "GUARDRAIL"}

// GenerateOptions tune a single oracle call.
type GenerateOptions struct {
	MaxTokens   int32
	Temperature float32
	// MinLength rejects degenerate completions shorter than this many
	// characters, treating them as unavailable.
	MinLength int
}

// Oracle is the single text-generation entry point for the conversation
// core. It applies one request-level timeout and collapses every failure
// mode into ErrUnavailable; exactly one attempt per call.
type Oracle struct {
	client  Client
	modelID string
	timeout time.Duration
	logger  *logging.Logger
}

// NewOracle wraps a client with the model id and timeout every call uses.
func NewOracle(client Client, modelID string, timeout time.Duration, logger *logging.Logger) *Oracle {
	if client == nil {
		panic("llm: oracle client cannot be nil")
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Oracle{
		client:  client,
		modelID: modelID,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate submits a single prompt and returns the completion text.
// Any failure returns ErrUnavailable (wrapping the cause where there is one).
func (o *Oracle) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	temperature := opts.Temperature
	if temperature < 0 {
		temperature = 0
	}

	resp, err := o.client.Complete(ctx, Request{
		Model:       o.modelID,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		o.logger.Warn("oracle call failed", "error", err.Error())
		return "", errors.Join(ErrUnavailable, err)
	}

	if isBlockedStopReason(resp.StopReason) {
		o.logger.Warn("oracle completion blocked", "stop_reason", resp.StopReason)
		return "", ErrUnavailable
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" || (opts.MinLength > 0 && len(text) < opts.MinLength) {
		o.logger.Warn("oracle returned unusable completion", "length", len(text))
		return "", ErrUnavailable
	}

	return text, nil
}

func isBlockedStopReason(reason string) bool {
	reason = strings.ToUpper(strings.TrimSpace(reason))
	if reason == "" {
		return false
	}
	for _, blocked := range blockedStopReasons {
		if strings.Contains(reason, blocked) {
			return true
		}
	}
	return false
}
