// Package compliance implements the core of the Mandate engine: mandate
// selection, artifact validation, and the pipeline that composes them
// with the classifier.
//
// Everything here is a pure function of its inputs plus an immutable
// rulebook — no I/O, no state between calls, safe for concurrent use.
package compliance

import (
	"sort"
	"strings"

	"github.com/mvca-labs/mandate/internal/rules"
)

// SelectMandates returns the subset of mandates that apply to a request:
// every always-on mandate (empty trigger set) plus every mandate whose
// trigger keywords intersect the feature text (case-insensitive
// substring match).
//
// The result is deduplicated by id and ordered critical → low, ties
// broken by table order. Downstream reporting relies on this ordering
// to present critical issues first.
//
// The category is accepted as a hook for future category-specific
// filtering but does not exclude anything today: a DEBUG request still
// surfaces security mandates when its text triggers them. Hiding
// critical mandates based on request type would be a silent hole.
func SelectMandates(category, featureText string, all []rules.Mandate) []rules.Mandate {
	_ = category // intentionally permissive, see doc comment

	text := strings.ToLower(featureText)
	seen := make(map[string]bool, len(all))

	var selected []rules.Mandate
	for _, m := range all {
		if seen[m.ID] {
			continue
		}
		if m.AlwaysOn() || triggered(m, text) {
			seen[m.ID] = true
			selected = append(selected, m)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Severity.Rank() < selected[j].Severity.Rank()
	})
	return selected
}

// triggered reports whether any trigger keyword appears in the
// lowercased feature text.
func triggered(m rules.Mandate, loweredText string) bool {
	for _, kw := range m.TriggerKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(loweredText, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
