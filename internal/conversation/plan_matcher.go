package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

// PlanMatch is a plan resolved from a customer utterance, together with the
// instalment amount parsed back out of the plan description when present.
type PlanMatch struct {
	Plan      PaymentPlan
	Index     int
	Amount    float64
	HasAmount bool
}

var (
	monthCountPattern = regexp.MustCompile(`(\d+)\s*-?\s*month`)
	planNumberPattern = regexp.MustCompile(`(?:plan|option|choice)\s*(\d+)`)
	planAmountPattern = regexp.MustCompile(`₹(\d+(?:,\d+)*(?:\.\d+)?)`)
)

var positionWords = []struct {
	words []string
	index int
}{
	{[]string{"first", "1st", "one"}, 0},
	{[]string{"second", "2nd", "two"}, 1},
	{[]string{"third", "3rd", "three"}, 2},
	{[]string{"fourth", "4th", "four"}, 3},
}

var acceptancePhrases = []string{
	"works for me", "that works", "i'll take", "ill take", "i will take",
	"i'll go with", "ill go with", "i will go with", "sounds good",
	"that's fine", "thats fine", "i choose", "i pick", "let's do",
	"lets do", "okay", "ok", "sure", "yes", "yeah",
}

// MatchPlan resolves which offered plan the customer is referring to. It
// tries, in order: an explicit month count ("the 3 month one"), an explicit
// plan number ("option 2"), ordinal words ("the second one"), bare acceptance
// phrases ("sounds good") when the previous assistant turn was presenting
// plans, and finally word overlap with the plan name. Returns nil if nothing
// matches.
func MatchPlan(plans []PaymentPlan, text, prevAssistant string) *PlanMatch {
	if len(plans) == 0 {
		return nil
	}
	lower := strings.ToLower(text)

	if m := monthCountPattern.FindStringSubmatch(lower); m != nil {
		for i, plan := range plans {
			if planMentionsMonths(plan, m[1]) {
				return newPlanMatch(plans, i)
			}
		}
	}

	if m := planNumberPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= len(plans) {
			return newPlanMatch(plans, n-1)
		}
	}

	for _, pos := range positionWords {
		for _, word := range pos.words {
			if strings.Contains(lower, word) && pos.index < len(plans) {
				return newPlanMatch(plans, pos.index)
			}
		}
	}

	prevLower := strings.ToLower(prevAssistant)
	if strings.Contains(prevLower, "option") || strings.Contains(prevLower, "plan") {
		for _, phrase := range acceptancePhrases {
			if strings.Contains(lower, phrase) {
				if len(plans) > 1 {
					return newPlanMatch(plans, 1)
				}
				return newPlanMatch(plans, 0)
			}
		}
	}

	words := wordSet(lower)
	for i, plan := range plans {
		overlap := 0
		for _, w := range strings.Fields(strings.ToLower(plan.Name)) {
			if words[w] {
				overlap++
			}
		}
		if overlap >= 2 {
			return newPlanMatch(plans, i)
		}
	}

	return nil
}

func planMentionsMonths(plan PaymentPlan, count string) bool {
	name := strings.ToLower(plan.Name)
	desc := strings.ToLower(plan.Description)
	switch {
	case strings.Contains(name, count+"-month"):
		return true
	case strings.Contains(desc, count+" month"):
		return true
	case strings.Contains(strings.ReplaceAll(name, " ", ""), count+"month"):
		return true
	case strings.Contains(name, count) && strings.Contains(name, "month"):
		return true
	}
	return false
}

func newPlanMatch(plans []PaymentPlan, index int) *PlanMatch {
	match := &PlanMatch{Plan: plans[index], Index: index}
	if m := planAmountPattern.FindStringSubmatch(plans[index].Description); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			match.Amount = amount
			match.HasAmount = true
		}
	}
	return match
}

func wordSet(lower string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(lower) {
		out[strings.Trim(w, ".,!?")] = true
	}
	return out
}
