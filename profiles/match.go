// Package profiles selects the run's account profile from runtime
// extra vars and exchanges it for temporary credentials.
package profiles

import (
	"github.com/yairfalse/awsvars/config"
)

// Select evaluates the configured profile rules against the run's
// extra vars and returns the matched profile name.
//
// A rule matches when every criterion key is present in extraVars with
// a value inside the criterion's acceptable set. When several rules
// match, the first declared wins; declaration order is the tie-break,
// not specificity. A plain-list profile configuration never selects.
func Select(set config.ProfileSet, extraVars map[string]string) (string, bool) {
	if !set.Matchable() {
		return "", false
	}

	for _, rule := range set.Rules {
		if ruleMatches(rule, extraVars) {
			return rule.Name, true
		}
	}
	return "", false
}

// ruleMatches checks every criterion conjunctively. Extra-var keys
// absent from the criteria are ignored.
func ruleMatches(rule config.ProfileRule, extraVars map[string]string) bool {
	for key, accepted := range rule.Criteria {
		value, ok := extraVars[key]
		if !ok || !accepted.Contains(value) {
			return false
		}
	}
	return true
}

// Resolve applies the environment override before rule matching: when
// override names a configured profile it wins outright, skipping the
// rules. Matching still requires the mapping-shaped configuration.
func Resolve(set config.ProfileSet, extraVars map[string]string, override string) (string, bool) {
	if override != "" {
		if set.HasProfile(override) {
			return override, true
		}
		return "", false
	}
	return Select(set, extraVars)
}
