package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/recoverly/collections-ai-agent/internal/llm"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

// IntentClassifier decides how a customer is responding to the debt
// disclosure. Tier 1 is the keyword rule table, which settles the obvious
// cases without a model call. Tier 2 asks the oracle for a single-word
// classification. When the oracle is blocked or unavailable the classifier
// salvages what it can from keywords and defaults to willing, the most
// common disposition on these calls.
type IntentClassifier struct {
	rules  *IntentRules
	oracle *llm.Oracle
	logger *logging.Logger
}

// NewIntentClassifier builds a classifier. A nil oracle is allowed; the
// classifier then runs on rules alone. A nil rules table uses the embedded
// defaults.
func NewIntentClassifier(rules *IntentRules, oracle *llm.Oracle, logger *logging.Logger) *IntentClassifier {
	if rules == nil {
		rules = DefaultIntentRules()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IntentClassifier{
		rules:  rules,
		oracle: oracle,
		logger: logger,
	}
}

const classifyPromptTemplate = `Classify this customer response in a debt collection call.

Response: %q

Categories (choose the best match):
- paid: Customer claims they already made payment (e.g., "I paid", "already cleared", "payment done", "transferred")
- disputed: Customer denies the debt or says it's wrong/not theirs (e.g., "never took", "not mine", "fraud", "wrong")
- callback: Customer wants to be called back later (e.g., "call me later", "busy now", "not available", "out of town")
- unable: Customer has no money/can't afford anything (e.g., "lost job", "no money", "can't afford", "struggling")
- willing: Customer wants to pay but needs options (e.g., "can't pay full", "installment", "payment plan", "will pay", "ready to pay")

Important: If customer says they want to pay but can't pay full amount, classify as "willing" (not "unable").
If customer says they already paid, classify as "paid" (not "willing").

Return ONE word only: paid, disputed, callback, unable, or willing

Classification:`

// Classify returns the intent behind a customer utterance. It never fails;
// degraded paths converge on a keyword salvage and finally IntentWilling.
func (c *IntentClassifier) Classify(ctx context.Context, text string) Intent {
	if intent := c.rules.Match(text); intent != IntentUnknown {
		return intent
	}

	if c.oracle == nil {
		return c.salvage(text)
	}

	prompt := fmt.Sprintf(classifyPromptTemplate, text)
	answer, err := c.oracle.Generate(ctx, prompt, llm.GenerateOptions{
		MaxTokens:   10,
		Temperature: 0.1,
	})
	if err != nil {
		c.logger.Warn("intent oracle unavailable, using keyword salvage", "error", err)
		return c.salvage(text)
	}

	raw := strings.ToLower(strings.TrimSpace(answer))
	if intent, ok := ParseIntent(raw); ok {
		return intent
	}
	for _, intent := range allowedIntents {
		if strings.Contains(raw, string(intent)) {
			return intent
		}
	}

	c.logger.Warn("intent oracle returned unexpected answer", "answer", raw)
	return c.salvage(text)
}

var salvageDisputeKeywords = []string{
	"not right", "doesnt seem", "doesn't seem", "wrong", "mistake",
	"not mine", "never took", "didn't take",
}

func (c *IntentClassifier) salvage(text string) Intent {
	lower := strings.ToLower(text)
	for _, kw := range salvageDisputeKeywords {
		if strings.Contains(lower, kw) {
			return IntentDisputed
		}
	}
	if containsAny(lower, "can't pay", "cant pay", "cannot pay", "pay", "payment") &&
		containsAny(lower, "full", "all", "complete", "entire") {
		return IntentWilling
	}
	return IntentWilling
}

func containsAny(lower string, phrases ...string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
