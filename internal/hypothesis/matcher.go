// internal/hypothesis/matcher.go
package hypothesis

import (
	"strings"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// PatternMatch pairs a registry entry with the keywords that fired for it.
type PatternMatch struct {
	Pattern         *ErrorPattern
	MatchedKeywords []string
}

// combinedIssueText concatenates reproduction steps, expected/actual
// behavior, and error messages into one case-folded haystack.
func combinedIssueText(issue schemas.IssueContext) string {
	var sb strings.Builder
	for _, step := range issue.ReproductionSteps {
		sb.WriteString(step)
		sb.WriteString("\n")
	}
	sb.WriteString(issue.ExpectedBehavior)
	sb.WriteString("\n")
	sb.WriteString(issue.ActualBehavior)
	sb.WriteString("\n")
	for _, msg := range issue.ErrorMessages {
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	return strings.ToLower(sb.String())
}

// errorText is the case-folded join of the raw error messages only. The
// keyword term of the confidence model counts against this narrower text.
func errorText(issue schemas.IssueContext) string {
	return strings.ToLower(strings.Join(issue.ErrorMessages, "\n"))
}

// matchPatterns returns the registry entries matching the issue text. A
// pattern matches when any of its regexes hits, or when at least two of its
// keywords appear as substrings. With zero matches the incorrect_logic
// fallback is returned so downstream builders always have a classification.
// Pure function; no side effects.
func matchPatterns(issue schemas.IssueContext) []PatternMatch {
	text := combinedIssueText(issue)

	var matches []PatternMatch
	for i := range errorPatterns {
		p := &errorPatterns[i]

		matched := false
		for _, re := range p.Regexes {
			if re.MatchString(text) {
				matched = true
				break
			}
		}

		keywords := keywordsIn(text, p.Keywords)
		if !matched && len(keywords) >= 2 {
			matched = true
		}
		if matched {
			matches = append(matches, PatternMatch{Pattern: p, MatchedKeywords: keywords})
		}
	}

	if len(matches) == 0 {
		matches = append(matches, PatternMatch{
			Pattern:         fallbackPattern,
			MatchedKeywords: keywordsIn(text, fallbackPattern.Keywords),
		})
	}
	return matches
}

// keywordsIn returns the subset of keywords present in text, preserving
// registry order.
func keywordsIn(text string, keywords []string) []string {
	var found []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}
