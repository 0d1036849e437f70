package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- Format selection ---

// Format identifies a rulebook serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from a file extension. YAML is the
// default for unknown extensions, matching how rulebooks are usually
// written by hand.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// --- Loaders ---

// LoadRulebook parses a rulebook from r and validates it. Returns a
// *ConfigError for any invariant violation — callers should treat that
// as fatal and abort startup.
func LoadRulebook(r io.Reader, format Format) (*Rulebook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading rulebook: %w", err)
	}

	var rb Rulebook
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &rb); err != nil {
			return nil, configErrorf("", "invalid JSON: %v", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rb); err != nil {
			return nil, configErrorf("", "invalid YAML: %v", err)
		}
	default:
		return nil, configErrorf("", "unknown format %q", format)
	}

	if err := rb.Validate(); err != nil {
		return nil, err
	}
	return &rb, nil
}

// LoadRulebookFile reads a rulebook from disk, picking the format from
// the file extension.
func LoadRulebookFile(path string) (*Rulebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rulebook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rb, err := LoadRulebook(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("loading rulebook %s: %w", path, err)
	}
	return rb, nil
}

// LoadMandates parses and validates a standalone mandate table.
func LoadMandates(r io.Reader, format Format) ([]Mandate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading mandates: %w", err)
	}

	var mandates []Mandate
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &mandates)
	case FormatYAML:
		err = yaml.Unmarshal(data, &mandates)
	default:
		return nil, configErrorf("", "unknown format %q", format)
	}
	if err != nil {
		return nil, configErrorf("", "invalid mandate table: %v", err)
	}

	if err := ValidateMandates(mandates); err != nil {
		return nil, err
	}
	return mandates, nil
}

// LoadClassificationRules parses and validates a standalone
// classification table.
func LoadClassificationRules(r io.Reader, format Format) ([]ClassificationRule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading classification rules: %w", err)
	}

	var crs []ClassificationRule
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &crs)
	case FormatYAML:
		err = yaml.Unmarshal(data, &crs)
	default:
		return nil, configErrorf("", "unknown format %q", format)
	}
	if err != nil {
		return nil, configErrorf("", "invalid classification table: %v", err)
	}

	if err := ValidateClassificationRules(crs); err != nil {
		return nil, err
	}
	return crs, nil
}

// --- Validation ---

// Validate checks both tables. Construction-time only; a validated
// Rulebook never fails per request.
func (rb *Rulebook) Validate() error {
	if err := ValidateMandates(rb.Mandates); err != nil {
		return err
	}
	return ValidateClassificationRules(rb.ClassificationRules)
}

// ValidateMandates enforces the mandate table invariants:
//   - every id is non-empty and unique
//   - every severity is a known value
//   - a critical mandate has at least one violation pattern or required
//     reference token (otherwise it can never be tested)
//   - every regex: pattern compiles
func ValidateMandates(mandates []Mandate) error {
	seen := make(map[string]bool, len(mandates))
	for i, m := range mandates {
		field := fmt.Sprintf("mandate %q", m.ID)
		if m.ID == "" {
			return configErrorf(fmt.Sprintf("mandate at index %d", i), "missing id")
		}
		if seen[m.ID] {
			return configErrorf(field, "duplicate id")
		}
		seen[m.ID] = true

		if err := ValidateSeverity(m.Severity); err != nil {
			return configErrorf(field, "%v", err)
		}

		if m.Severity == SeverityCritical &&
			len(m.ViolationPatterns) == 0 && len(m.RequiredReferenceTokens) == 0 {
			return configErrorf(field, "critical mandate has no violation patterns and no required reference tokens — it can never be tested")
		}

		for _, p := range m.ViolationPatterns {
			if p == "" {
				return configErrorf(field, "empty violation pattern")
			}
			if IsRegexPattern(p) {
				if _, err := regexp.Compile("(?i)" + RegexBody(p)); err != nil {
					return configErrorf(field, "invalid regex pattern %q: %v", p, err)
				}
			}
		}
	}
	return nil
}

// ValidateClassificationRules enforces the classification table
// invariants:
//   - every category is non-empty, categories are unique
//   - exactly the rules with keywords are selective; at least one
//     catch-all rule exists
//   - the catch-all has the highest priority, so it is evaluated last
//     and every more specific rule gets a chance first
func ValidateClassificationRules(crs []ClassificationRule) error {
	if len(crs) == 0 {
		return configErrorf("classification rules", "table is empty")
	}

	seen := make(map[string]bool, len(crs))
	catchAll := -1
	maxPriority := crs[0].Priority
	for i, r := range crs {
		field := fmt.Sprintf("classification rule %q", r.Category)
		if r.Category == "" {
			return configErrorf(fmt.Sprintf("classification rule at index %d", i), "missing category")
		}
		if seen[r.Category] {
			return configErrorf(field, "duplicate category")
		}
		seen[r.Category] = true

		if r.Priority > maxPriority {
			maxPriority = r.Priority
		}
		if r.CatchAll() {
			if catchAll >= 0 {
				return configErrorf(field, "multiple catch-all rules (only one rule may have an empty keyword list)")
			}
			catchAll = i
		}
	}

	if catchAll < 0 {
		return configErrorf("classification rules", "no catch-all rule — add a rule with an empty keyword list (conventionally NEW_FEATURE) so classification always succeeds")
	}
	if crs[catchAll].Priority < maxPriority {
		return configErrorf(
			fmt.Sprintf("classification rule %q", crs[catchAll].Category),
			"catch-all must have the highest priority (has %d, table max is %d)",
			crs[catchAll].Priority, maxPriority,
		)
	}
	return nil
}
