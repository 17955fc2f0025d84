package conversation

import (
	"strings"
	"time"
)

// Commitment is the outcome of scanning the recent transcript for a promise
// to pay. It is a pure read over CallState; detection never mutates the call.
type Commitment struct {
	HasAmount bool
	Amount    float64
	HasDate   bool
	Date      string
	Plan      *PlanMatch
}

// HasBoth reports whether the customer has committed to both an amount and a
// date, which is what a promise-to-pay requires.
func (c Commitment) HasBoth() bool {
	return c.HasAmount && c.HasDate
}

var willingnessPhrases = []string{
	"i want to pay", "i'll pay", "ill pay", "i will pay", "will pay",
	"ready to pay", "can pay", "want to clear", "want to settle",
	"pay the full", "pay it all", "pay everything", "full amount",
	"entire amount", "whole amount",
}

// Markers in assistant turns that anchor the commitment scan window.
const (
	verifiedMarker     = "thank you for confirming"
	disclosureMarker   = "outstanding payment"
	planOfferMarkerA   = "option"
	planOfferMarkerB   = "installment"
	commitmentLookback = 3
)

// DetectCommitment scans the transcript for the amount, date and plan the
// customer has committed to. The scan window starts after identity
// verification; if plans have since been offered, it starts at the offer so
// that amounts quoted during disclosure are not misread as commitments. When
// neither marker exists yet, only the last few turns are considered.
//
// A customer who gives a date plus a general willingness to pay ("I'll pay,
// how about the 15th") is committed to the full outstanding amount.
func DetectCommitment(state *CallState, now time.Time) Commitment {
	turns := state.Turns
	verifiedIdx := -1
	for i, t := range turns {
		if t.Role != RoleAssistant {
			continue
		}
		lower := strings.ToLower(t.Content)
		if strings.Contains(lower, verifiedMarker) || strings.Contains(lower, disclosureMarker) {
			verifiedIdx = i
		}
	}

	planOfferIdx := -1
	for i := verifiedIdx + 1; i < len(turns); i++ {
		if turns[i].Role != RoleAssistant {
			continue
		}
		lower := strings.ToLower(turns[i].Content)
		if strings.Contains(lower, planOfferMarkerA) || strings.Contains(lower, planOfferMarkerB) {
			planOfferIdx = i
			break
		}
	}

	start := 0
	switch {
	case planOfferIdx >= 0:
		start = planOfferIdx
		if verifiedIdx+1 > start {
			start = verifiedIdx + 1
		}
	case verifiedIdx >= 0:
		start = verifiedIdx + 1
	default:
		start = len(turns) - commitmentLookback
		if start < 0 {
			start = 0
		}
	}

	var c Commitment
	for i := start; i < len(turns); i++ {
		if turns[i].Role != RoleUser {
			continue
		}
		content := turns[i].Content

		if len(state.OfferedPlans) > 0 && c.Plan == nil {
			prev := ""
			if i > 0 {
				prev = turns[i-1].Content
			}
			if match := MatchPlan(state.OfferedPlans, content, prev); match != nil {
				c.Plan = match
				if match.HasAmount {
					c.Amount = match.Amount
					c.HasAmount = true
				}
			}
		}

		if !c.HasDate {
			if date, ok := ExtractDate(content, now); ok {
				c.Date = date
				c.HasDate = true
			}
		}

		if !c.HasAmount && c.Plan == nil {
			if amount, ok := ExtractAmount(content); ok {
				c.Amount = amount
				c.HasAmount = true
			}
		}
	}

	if c.HasDate && !c.HasAmount && c.Plan == nil && userExpressedWillingness(turns) {
		c.Amount = state.OutstandingAmount
		c.HasAmount = true
	}

	return c
}

func userExpressedWillingness(turns []Turn) bool {
	for _, t := range turns {
		if t.Role != RoleUser {
			continue
		}
		lower := strings.ToLower(t.Content)
		for _, phrase := range willingnessPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}
