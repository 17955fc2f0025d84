package conversation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Intent is the classified disposition of a customer utterance during the
// disclosure stage.
type Intent string

const (
	IntentPaid     Intent = "paid"
	IntentDisputed Intent = "disputed"
	IntentCallback Intent = "callback"
	IntentUnable   Intent = "unable"
	IntentWilling  Intent = "willing"

	// IntentUnknown never leaves the classifier; it signals that the rule
	// tier could not decide and the oracle tier should run.
	IntentUnknown Intent = "unknown"
)

var allowedIntents = []Intent{IntentPaid, IntentDisputed, IntentCallback, IntentUnable, IntentWilling}

// ParseIntent validates a raw intent value.
func ParseIntent(s string) (Intent, bool) {
	candidate := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, intent := range allowedIntents {
		if candidate == intent {
			return intent, true
		}
	}
	return IntentUnknown, false
}

//go:embed rules.yaml
var defaultRulesYAML []byte

// IntentRule couples an intent with the phrases that signal it.
type IntentRule struct {
	Intent  Intent   `yaml:"intent"`
	Phrases []string `yaml:"phrases"`
}

// IntentRules is an ordered keyword rule table. Rule order is priority
// order: the first rule containing a matching phrase decides the intent.
type IntentRules struct {
	Rules []IntentRule `yaml:"rules"`
}

// DefaultIntentRules loads the rule table compiled into the binary.
func DefaultIntentRules() *IntentRules {
	rules, err := parseIntentRules(defaultRulesYAML)
	if err != nil {
		// The embedded table is validated by tests; failing to parse it
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("conversation: embedded intent rules invalid: %v", err))
	}
	return rules
}

// LoadIntentRules reads a rule table from a YAML file, letting operators
// extend the phrase lists without a redeploy.
func LoadIntentRules(path string) (*IntentRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to read intent rules: %w", err)
	}
	rules, err := parseIntentRules(data)
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func parseIntentRules(data []byte) (*IntentRules, error) {
	var rules IntentRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("conversation: failed to parse intent rules: %w", err)
	}
	if len(rules.Rules) == 0 {
		return nil, fmt.Errorf("conversation: intent rules contain no rules")
	}
	for i, rule := range rules.Rules {
		if _, ok := ParseIntent(string(rule.Intent)); !ok {
			return nil, fmt.Errorf("conversation: rule %d has invalid intent %q", i, rule.Intent)
		}
		if len(rule.Phrases) == 0 {
			return nil, fmt.Errorf("conversation: rule %d (%s) has no phrases", i, rule.Intent)
		}
	}
	return &rules, nil
}

// Match runs the keyword tier. It returns IntentUnknown when no phrase
// matches, which tells the caller to consult the oracle.
func (r *IntentRules) Match(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range r.Rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				return rule.Intent
			}
		}
	}
	return IntentUnknown
}
