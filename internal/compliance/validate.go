package compliance

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mvca-labs/mandate/internal/rules"
)

// PassThreshold is the minimum score for a passing report. The source
// constitution fixes "score >= 90% passes"; the per-severity deductions
// live on rules.Severity.
const PassThreshold = 90

// Violation is one compliance finding against a mandate.
type Violation struct {
	MandateID string         `json:"mandate_id"`
	Severity  rules.Severity `json:"severity"`
	Message   string         `json:"message"`
}

// Report is the outcome of validating one artifact against a mandate
// set. Created fresh per call and owned by the caller — never cached.
type Report struct {
	Score      int         `json:"score"`
	Violations []Violation `json:"violations"`
	Passed     bool        `json:"passed"`
}

// Validate scores an artifact against the selected mandates.
//
// Two independent checks run per mandate:
//
//   - Anti-pattern: any violation pattern found in the artifact is a
//     CRITICAL violation regardless of the mandate's declared severity.
//     A present anti-pattern is a demonstrable defect, not an omission.
//   - Reference: a non-empty required-token list with no token present
//     is a violation at the mandate's declared severity.
//
// Deductions are severity-weighted, the score is clamped to [0, 100],
// and the report passes only with score >= PassThreshold and zero
// CRITICAL violations. Violations are ordered critical → low, stable by
// mandate order.
//
// Validate never fails: an empty artifact simply satisfies no reference
// check, and an empty mandate set yields a perfect passing report.
func Validate(artifact string, mandates []rules.Mandate) Report {
	lowered := strings.ToLower(artifact)

	var violations []Violation
	for _, m := range mandates {
		if pattern, found := findAntiPattern(m, artifact, lowered); found {
			violations = append(violations, Violation{
				MandateID: m.ID,
				Severity:  rules.SeverityCritical,
				Message:   fmt.Sprintf("anti-pattern detected: %q", pattern),
			})
		}

		if len(m.RequiredReferenceTokens) > 0 && !hasReference(m, lowered) {
			violations = append(violations, Violation{
				MandateID: m.ID,
				Severity:  m.Severity,
				Message: fmt.Sprintf("required reference missing: expected one of %s",
					strings.Join(m.RequiredReferenceTokens, ", ")),
			})
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Severity.Rank() < violations[j].Severity.Rank()
	})

	score := 100
	critical := false
	for _, v := range violations {
		score -= v.Severity.Weight()
		if v.Severity == rules.SeverityCritical {
			critical = true
		}
	}
	if score < 0 {
		score = 0
	}

	return Report{
		Score:      score,
		Violations: violations,
		Passed:     score >= PassThreshold && !critical,
	}
}

// findAntiPattern returns the first violation pattern present in the
// artifact. Plain patterns are case-insensitive substring matches;
// regex: patterns are compiled case-insensitively. A pattern that fails
// to compile (only possible with an unvalidated table) falls back to a
// literal substring match so validation stays total and deterministic.
func findAntiPattern(m rules.Mandate, artifact, lowered string) (string, bool) {
	for _, p := range m.ViolationPatterns {
		if p == "" {
			continue
		}
		if rules.IsRegexPattern(p) {
			re, err := regexp.Compile("(?i)" + rules.RegexBody(p))
			if err != nil {
				if strings.Contains(lowered, strings.ToLower(rules.RegexBody(p))) {
					return p, true
				}
				continue
			}
			if re.MatchString(artifact) {
				return p, true
			}
			continue
		}
		if strings.Contains(lowered, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}

// hasReference reports whether any required token appears in the
// lowered artifact.
func hasReference(m rules.Mandate, lowered string) bool {
	for _, tok := range m.RequiredReferenceTokens {
		if tok == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
