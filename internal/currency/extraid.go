package currency

import (
	"regexp"
	"strings"
)

const defaultExtraIDLabel = "Extra ID"

// ExtraIDRule describes the secondary identifier a chain needs to route
// funds to the right account behind a shared address.
type ExtraIDRule struct {
	Pattern     *regexp.Regexp
	Label       string
	Description string
}

func DefaultExtraIDRules() map[string]ExtraIDRule {
	return map[string]ExtraIDRule{
		"XRP": {
			Pattern:     regexp.MustCompile(`^\d{1,10}$`),
			Label:       "Destination Tag",
			Description: "numeric tag of 1 to 10 digits",
		},
		"XLM": {
			Pattern:     regexp.MustCompile(`^.{1,28}$`),
			Label:       "Memo",
			Description: "text memo of 1 to 28 characters",
		},
		"HBAR": {
			Pattern:     regexp.MustCompile(`^.{1,100}$`),
			Label:       "Memo",
			Description: "text memo of 1 to 100 characters",
		},
	}
}

// ExtraIDPolicy answers memo/destination-tag questions per currency.
type ExtraIDPolicy struct {
	rules map[string]ExtraIDRule
}

func NewExtraIDPolicy(rules map[string]ExtraIDRule) *ExtraIDPolicy {
	normalized := make(map[string]ExtraIDRule, len(rules))
	for code, rule := range rules {
		normalized[strings.ToUpper(code)] = rule
	}
	return &ExtraIDPolicy{rules: normalized}
}

func (p *ExtraIDPolicy) RequiresExtraID(code string) bool {
	_, ok := p.rules[strings.ToUpper(code)]
	return ok
}

// Validate reports whether value is an acceptable extra ID for code.
// Currencies without a rule have no valid extra ID, so Validate returns
// false for them regardless of value.
func (p *ExtraIDPolicy) Validate(code, value string) bool {
	rule, ok := p.rules[strings.ToUpper(code)]
	if !ok {
		return false
	}
	return rule.Pattern.MatchString(value)
}

func (p *ExtraIDPolicy) Label(code string) string {
	if rule, ok := p.rules[strings.ToUpper(code)]; ok {
		return rule.Label
	}
	return defaultExtraIDLabel
}

func (p *ExtraIDPolicy) Rule(code string) (ExtraIDRule, bool) {
	rule, ok := p.rules[strings.ToUpper(code)]
	return rule, ok
}
