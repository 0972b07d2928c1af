package coaching

import (
	"regexp"
	"strings"
)

// impersonationPrefixes lists line openings that indicate the model answered
// on the candidate's behalf. The list is data: extending sanitization means
// adding a prefix, not code.
var impersonationPrefixes = []string{
	"User:",
	"Candidate:",
	"I would",
	"Let me",
	"First,",
	"To answer",
	"Regarding",
	"As a",
}

var impersonationRules = compilePrefixRules(impersonationPrefixes)

func compilePrefixRules(prefixes []string) []*regexp.Regexp {
	rules := make([]*regexp.Regexp, 0, len(prefixes))
	for _, p := range prefixes {
		rules = append(rules, regexp.MustCompile(`(?i)^`+regexp.QuoteMeta(p)))
	}
	return rules
}

// Sanitize removes lines that impersonate the candidate from an interview
// answer, drops blank lines, and trims the result. It is idempotent.
func Sanitize(raw string) string {
	var kept []string

line:
	for _, line := range strings.Split(raw, "\n") {
		for _, rule := range impersonationRules {
			if rule.MatchString(line) {
				continue line
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
