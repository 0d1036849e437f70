// Package rules owns the immutable rule tables of the Mandate engine:
// the mandates an artifact is validated against and the classification
// rules that map a request to a category.
//
// Both tables are loaded once at startup, validated, and never mutated
// afterward — the engine is stateless by design, so any number of
// goroutines may read a Rulebook concurrently without coordination.
//
// This package follows the same design principles as the rest of the server:
// - SRP: types, builtin tables, and loaders in separate files
// - OCP: new mandates and categories are data, not code
package rules

import (
	"fmt"
	"strings"
)

// --- Severity enum ---

// Severity classifies how serious a mandate (or a violation of it) is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// validSeverities is the set of allowed severities.
var validSeverities = map[Severity]bool{
	SeverityCritical: true,
	SeverityHigh:     true,
	SeverityMedium:   true,
	SeverityLow:      true,
}

// ValidateSeverity returns an error if the severity is not recognized.
func ValidateSeverity(s Severity) error {
	if !validSeverities[s] {
		return fmt.Errorf("invalid severity %q: must be one of: critical, high, medium, low", s)
	}
	return nil
}

// severityRank orders severities for report sorting (lower = more severe).
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Rank returns the sort rank of a severity: critical first, low last.
// Unknown severities sort after low.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// severityWeight maps severity to the score deduction per violation.
var severityWeight = map[Severity]int{
	SeverityCritical: 25,
	SeverityHigh:     10,
	SeverityMedium:   5,
	SeverityLow:      2,
}

// Weight returns the score deduction a violation of this severity incurs.
func (s Severity) Weight() int {
	return severityWeight[s]
}

// --- Categories ---

// Request categories are data-driven: the classification table defines
// them. Only two have fixed meaning to the engine itself.
const (
	// CategoryEmptyInput is returned for empty or whitespace-only input,
	// before the classification table is consulted. It is an explicit
	// category, not an error — the caller decides policy.
	CategoryEmptyInput = "EMPTY_INPUT"

	// CategoryNewFeature is the conventional catch-all category. A
	// rulebook must end with a catch-all rule so classification is total.
	CategoryNewFeature = "NEW_FEATURE"
)

// --- Core data structures ---

// Mandate is a single testable compliance rule from the constitution,
// e.g. "passwords must be hashed".
//
// A mandate can be tested two independent ways:
//   - ViolationPatterns: text whose PRESENCE in an artifact proves a
//     violation ("store password plaintext").
//   - RequiredReferenceTokens: text whose ABSENCE means the mandate was
//     never addressed (no "bcrypt", no "argon2" anywhere).
//
// Either list may be empty, which skips that check. An empty
// TriggerKeywords list makes the mandate always-on.
type Mandate struct {
	ID                      string   `json:"id" yaml:"id"`
	Description             string   `json:"description" yaml:"description"`
	Severity                Severity `json:"severity" yaml:"severity"`
	TriggerKeywords         []string `json:"trigger_keywords,omitempty" yaml:"trigger_keywords,omitempty"`
	ViolationPatterns       []string `json:"violation_patterns,omitempty" yaml:"violation_patterns,omitempty"`
	RequiredReferenceTokens []string `json:"required_reference_tokens,omitempty" yaml:"required_reference_tokens,omitempty"`
}

// AlwaysOn reports whether the mandate applies to every request
// regardless of feature text.
func (m Mandate) AlwaysOn() bool {
	return len(m.TriggerKeywords) == 0
}

// ClassificationRule maps keywords to a request category. Rules are
// evaluated in ascending Priority order; the first rule with a keyword
// substring match in the (lowercased) input wins.
type ClassificationRule struct {
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Priority int      `json:"priority" yaml:"priority"`
}

// CatchAll reports whether the rule matches any input. A rule with no
// keywords is the explicit catch-all.
func (r ClassificationRule) CatchAll() bool {
	return len(r.Keywords) == 0
}

// Rulebook bundles the two validated rule tables. It is constructed once
// (DefaultRulebook or a loader) and treated as read-only afterward.
type Rulebook struct {
	Mandates            []Mandate            `json:"mandates" yaml:"mandates"`
	ClassificationRules []ClassificationRule `json:"classification_rules" yaml:"classification_rules"`
}

// --- ConfigError ---

// ConfigError reports malformed static configuration: duplicate ids,
// missing catch-all rule, a critical mandate with no testable condition.
// It is fatal — loaders return it and startup must abort; it is never
// produced per request.
type ConfigError struct {
	Field  string // which table or entry is at fault, e.g. `mandate "password_hashing"`
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("rulebook config: %s", e.Reason)
	}
	return fmt.Sprintf("rulebook config: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// --- Pattern syntax ---

// RegexPrefix marks a violation pattern as a Go regular expression.
// Patterns without the prefix are case-insensitive substring matches,
// which keeps rulebooks writable without regex knowledge.
const RegexPrefix = "regex:"

// IsRegexPattern reports whether a violation pattern uses regex syntax.
func IsRegexPattern(pattern string) bool {
	return strings.HasPrefix(pattern, RegexPrefix)
}

// RegexBody returns the expression after the regex: prefix.
func RegexBody(pattern string) string {
	return strings.TrimPrefix(pattern, RegexPrefix)
}
