package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recoverly/collections-ai-agent/internal/llm"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

// PlanGenerator produces repayment options for an outstanding balance. It
// asks the oracle for tailored plans first and degrades to a fixed rule set,
// so the negotiation always has something concrete to offer.
type PlanGenerator struct {
	oracle *llm.Oracle
	logger *logging.Logger
}

// NewPlanGenerator builds a generator. A nil oracle means fallback plans only.
func NewPlanGenerator(oracle *llm.Oracle, logger *logging.Logger) *PlanGenerator {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlanGenerator{oracle: oracle, logger: logger}
}

const plansPromptTemplate = `Create 2-3 payment plans for a debt of ₹%s.

Return JSON array only:
[
  {"name": "Plan name", "description": "Details with amount and timeline"}
]

Generate plans:`

// Generate returns 2-3 plans for the given balance. Never returns an empty
// slice or an error; any oracle failure falls through to FallbackPlans.
func (g *PlanGenerator) Generate(ctx context.Context, amount float64) []PaymentPlan {
	if g.oracle == nil {
		return FallbackPlans(amount)
	}

	prompt := fmt.Sprintf(plansPromptTemplate, formatINR(amount))
	text, err := g.oracle.Generate(ctx, prompt, llm.GenerateOptions{
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		g.logger.Warn("plan oracle unavailable, using fallback plans", "error", err)
		return FallbackPlans(amount)
	}

	plans, err := parsePlansJSON(text)
	if err != nil {
		g.logger.Warn("plan oracle returned unparseable plans, using fallback", "error", err)
		return FallbackPlans(amount)
	}
	return plans
}

func parsePlansJSON(text string) ([]PaymentPlan, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("conversation: no JSON array in plan response")
	}

	var plans []PaymentPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &plans); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode plans: %w", err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("conversation: plan response was empty")
	}
	for _, plan := range plans {
		if plan.Name == "" || plan.Description == "" {
			return nil, fmt.Errorf("conversation: plan missing name or description")
		}
	}
	return plans, nil
}

// FallbackPlans builds the rule-based plan set: a discounted settlement, a
// 3-month instalment, and a longer or shorter third option depending on the
// size of the balance. Each description quotes the instalment in rupees so
// the commitment detector can recover the amount when the plan is chosen.
func FallbackPlans(amount float64) []PaymentPlan {
	discounted := amount - float64(int(amount*0.05))
	plans := []PaymentPlan{
		{
			Name:        "Immediate Settlement",
			Description: fmt.Sprintf("Pay ₹%s (5%% discount) in full within 7 days", formatINR(discounted)),
		},
		{
			Name:        "3-Month Installment",
			Description: fmt.Sprintf("Pay ₹%s per month for 3 months", formatINR(float64(int(amount/3)))),
		},
	}

	if amount > 30000 {
		plans = append(plans, PaymentPlan{
			Name:        "6-Month Installment",
			Description: fmt.Sprintf("Pay ₹%s per month for 6 months", formatINR(float64(int(amount/6)))),
		})
	} else {
		plans = append(plans, PaymentPlan{
			Name:        "2-Month Installment",
			Description: fmt.Sprintf("Pay ₹%s per month for 2 months", formatINR(float64(int(amount/2)))),
		})
	}
	return plans
}

// formatINR renders a whole-rupee figure with comma separators, e.g. 45000
// becomes "45,000".
func formatINR(amount float64) string {
	digits := fmt.Sprintf("%.0f", amount)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
