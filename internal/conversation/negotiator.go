package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/recoverly/collections-ai-agent/internal/llm"
)

// maxNegotiationTurns bounds how long the engine keeps negotiating before
// it wraps up and defers to a human follow-up.
const maxNegotiationTurns = 8

var endSignals = []string{
	"no that's all", "no thanks bye", "goodbye", "bye bye",
	"nothing else", "that's all",
}

var planRequestKeywords = []string{
	"payment plan", "installment", "emi", "monthly payment",
	"break it up", "pay in parts", "split", "work out a plan",
	"options", "what are my options", "can you offer",
}

// negotiate works toward a promise to pay. Priority order per turn: a full
// commitment closes the call immediately; a plan without a date asks for the
// date; an exhausted or ending conversation wraps up for human follow-up; a
// fresh negotiation or explicit plan request presents options; anything else
// gets a free-form reply from the oracle, or a template when the oracle is
// unavailable.
func (e *Engine) negotiate(ctx context.Context, state *CallState) (*patch, error) {
	first := state.FirstName()
	lastInput := strings.ToLower(state.LastUserTurn())
	turns := negotiationTurns(state.Turns)

	c := DetectCommitment(state, e.now())

	if c.HasBoth() {
		planName := "Custom Payment Plan"
		var selected *PaymentPlan
		if c.Plan != nil {
			plan := c.Plan.Plan
			planName = plan.Name
			selected = &plan
		}

		ptpID, err := e.sink.SavePTP(ctx, state.CustomerID, c.Amount, c.Date, planName)
		if err != nil {
			return nil, err
		}
		e.logger.Info("promise to pay recorded",
			"ptp_id", ptpID,
			"customer_id", state.CustomerID,
			"amount", c.Amount,
			"date", c.Date)

		reply := fmt.Sprintf(
			"Perfect, %s. I've documented your commitment to the %s with payment of ₹%s starting on %s. Your PTP reference number is %s. You'll receive a confirmation shortly. Thank you for working this out with us. Have a great day!",
			first, planName, formatINR(c.Amount), c.Date, ptpID,
		)
		return &patch{
			reply:         reply,
			stage:         StageClosing,
			isComplete:    true,
			paymentStatus: string(IntentWilling),
			selectedPlan:  selected,
			ptpAmount:     c.Amount,
			ptpDate:       c.Date,
			ptpID:         ptpID,
			callOutcome:   "ptp_recorded",
		}, nil
	}

	if c.Plan != nil && !c.HasDate {
		reply := fmt.Sprintf(
			"Great choice, %s! I've noted the %s. When would you like to make your first payment?",
			first, c.Plan.Plan.Name,
		)
		return &patch{
			reply:         reply,
			stage:         StageNegotiation,
			awaitingUser:  true,
			paymentStatus: string(IntentWilling),
		}, nil
	}

	if containsAny(lastInput, endSignals...) || turns >= maxNegotiationTurns {
		// Deliberately not complete: the arrangement is unfinished and a
		// human follow-up still owns this call.
		reply := fmt.Sprintf(
			"Thank you, %s. I've documented our discussion. We'll follow up with you shortly to finalize the arrangement. Have a good day.",
			first,
		)
		return &patch{
			reply: reply,
			stage: StageNegotiation,
		}, nil
	}

	if turns == 0 || (containsAny(lastInput, planRequestKeywords...) && len(state.OfferedPlans) == 0) {
		plans := e.plans.Generate(ctx, state.OutstandingAmount)

		var b strings.Builder
		if turns == 0 {
			fmt.Fprintf(&b, "I appreciate your willingness to work this out, %s. Let me show you some options:\n\n", first)
		} else {
			fmt.Fprintf(&b, "Of course, %s. Here are some payment options:\n\n", first)
		}
		for i, plan := range plans {
			fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, plan.Name, plan.Description)
		}
		b.WriteString("\nWhich option works best for you?")

		return &patch{
			reply:         b.String(),
			stage:         StageNegotiation,
			awaitingUser:  true,
			paymentStatus: string(IntentWilling),
			offeredPlans:  plans,
		}, nil
	}

	reply := e.freeFormReply(ctx, state, c)
	return &patch{
		reply:         reply,
		stage:         StageNegotiation,
		awaitingUser:  true,
		paymentStatus: string(IntentWilling),
	}, nil
}

func (e *Engine) freeFormReply(ctx context.Context, state *CallState, c Commitment) string {
	if e.oracle != nil {
		prompt := negotiationPrompt(state)
		reply, err := e.oracle.Generate(ctx, prompt, llm.GenerateOptions{
			MaxTokens:   150,
			Temperature: 0.7,
			MinLength:   20,
		})
		if err == nil {
			return reply
		}
		e.logger.Warn("negotiation oracle unavailable, using template", "error", err)
		e.metrics.ObserveOracleFallback("negotiation")
	}

	first := state.FirstName()
	if c.HasDate && !c.HasAmount && c.Plan == nil {
		return fmt.Sprintf(
			"Thank you for that date, %s. Could you confirm which payment plan works best for you?",
			first,
		)
	}
	return fmt.Sprintf(
		"I appreciate your input, %s. To finalize this, could you confirm the payment plan and date that work for you?",
		first,
	)
}

func negotiationPrompt(state *CallState) string {
	var conversation strings.Builder
	turns := state.Turns
	if len(turns) > 6 {
		turns = turns[len(turns)-6:]
	}
	for _, t := range turns {
		role := "Customer"
		if t.Role == RoleAssistant {
			role = "Agent"
		}
		fmt.Fprintf(&conversation, "%s: %s\n", role, t.Content)
	}

	var plansContext strings.Builder
	if len(state.OfferedPlans) > 0 {
		plansContext.WriteString("\n\nOffered plans:\n")
		for _, plan := range state.OfferedPlans {
			fmt.Fprintf(&plansContext, "- %s: %s\n", plan.Name, plan.Description)
		}
	}

	return fmt.Sprintf(`You are a professional debt collection agent.

Customer: %s
Outstanding: ₹%s

Recent conversation:
%s%s

Customer said: %q

Task: Respond naturally. If they selected a plan, confirm it and ask for payment date. If they mentioned a date, confirm it. Be brief (2-3 sentences).

Response:`,
		state.FirstName(), formatINR(state.OutstandingAmount),
		conversation.String(), plansContext.String(), state.LastUserTurn(),
	)
}

// negotiationTurns counts assistant turns spent negotiating. The disclosure
// message resets the counter; turns that present options or plans, and
// everything after them, count.
func negotiationTurns(turns []Turn) int {
	count := 0
	inNegotiation := false
	for _, t := range turns {
		if t.Role != RoleAssistant {
			continue
		}
		lower := strings.ToLower(t.Content)
		switch {
		case strings.Contains(lower, "outstanding payment") || strings.Contains(lower, "able to make this payment"):
			inNegotiation = false
		case inNegotiation || containsAny(lower, "option", "installment", "plan", "appreciate your willingness"):
			inNegotiation = true
			count++
		}
	}
	return count
}
