// Package classify maps free-text requests to a single category using
// the ordered keyword rules from a rulebook.
//
// Classification is a linear scan over a small immutable table: rules
// are tried in ascending priority order and the first keyword substring
// match wins. A validated table always contains a catch-all rule, so
// classification is total — it never fails for non-empty input.
package classify

import (
	"sort"
	"strings"

	"github.com/mvca-labs/mandate/internal/rules"
)

// Classify returns the category for rawInput.
//
// Empty or whitespace-only input returns CategoryEmptyInput before the
// table is consulted — blank input must never fall through to the
// catch-all by accident; the caller decides what to do with it.
func Classify(rawInput string, table []rules.ClassificationRule) string {
	input := strings.ToLower(strings.TrimSpace(rawInput))
	if input == "" {
		return rules.CategoryEmptyInput
	}

	for _, rule := range ByPriority(table) {
		if rule.CatchAll() {
			return rule.Category
		}
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(input, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}

	// Unreachable with a validated table (catch-all always matches),
	// but an unvalidated table must still get a deterministic answer.
	return rules.CategoryNewFeature
}

// ByPriority returns the rules sorted by ascending priority, ties broken
// by table order. The input slice is not modified.
func ByPriority(table []rules.ClassificationRule) []rules.ClassificationRule {
	sorted := make([]rules.ClassificationRule, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}
