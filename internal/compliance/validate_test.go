package compliance

import (
	"reflect"
	"testing"

	"github.com/mvca-labs/mandate/internal/rules"
)

func passwordMandate() rules.Mandate {
	return rules.Mandate{
		ID:                      "password_hashing",
		Severity:                rules.SeverityCritical,
		ViolationPatterns:       []string{"plaintext"},
		RequiredReferenceTokens: []string{"bcrypt", "argon2"},
	}
}

// --- Basic outcomes ---

func TestValidate_EmptyMandateSet(t *testing.T) {
	report := Validate("any artifact at all", nil)

	if report.Score != 100 {
		t.Errorf("score = %d, want 100", report.Score)
	}
	if !report.Passed {
		t.Error("empty mandate set should pass")
	}
	if len(report.Violations) != 0 {
		t.Errorf("violations = %v, want none", report.Violations)
	}
}

func TestValidate_CompliantArtifact(t *testing.T) {
	report := Validate("hash with bcrypt cost factor 12", []rules.Mandate{passwordMandate()})

	if len(report.Violations) != 0 {
		t.Fatalf("violations = %v, want none", report.Violations)
	}
	if report.Score != 100 || !report.Passed {
		t.Errorf("score=%d passed=%v, want 100/true", report.Score, report.Passed)
	}
}

func TestValidate_AntiPatternIsCriticalViolation(t *testing.T) {
	report := Validate(
		"store password plaintext, then hash with bcrypt later",
		[]rules.Mandate{passwordMandate()},
	)

	if len(report.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(report.Violations))
	}
	v := report.Violations[0]
	if v.MandateID != "password_hashing" {
		t.Errorf("mandate id = %s, want password_hashing", v.MandateID)
	}
	if v.Severity != rules.SeverityCritical {
		t.Errorf("severity = %s, want critical", v.Severity)
	}
	if report.Score > 75 {
		t.Errorf("score = %d, want <= 75 after a critical deduction", report.Score)
	}
	if report.Passed {
		t.Error("anti-pattern match must fail the report")
	}
}

func TestValidate_AntiPatternEscalatesLowSeverity(t *testing.T) {
	// The mandate declares LOW severity, but a present anti-pattern is
	// always a critical violation.
	m := rules.Mandate{
		ID:                "caching_notes",
		Severity:          rules.SeverityLow,
		ViolationPatterns: []string{"cache forever"},
	}

	report := Validate("just cache forever and move on", []rules.Mandate{m})

	if len(report.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(report.Violations))
	}
	if report.Violations[0].Severity != rules.SeverityCritical {
		t.Errorf("severity = %s, want critical (escalated)", report.Violations[0].Severity)
	}
	if report.Passed {
		t.Error("report must fail regardless of declared severity")
	}
}

func TestValidate_MissingReferenceUsesDeclaredSeverity(t *testing.T) {
	m := rules.Mandate{
		ID:                      "error_handling",
		Severity:                rules.SeverityMedium,
		RequiredReferenceTokens: []string{"error", "failure"},
	}

	report := Validate("just the happy path", []rules.Mandate{m})

	if len(report.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(report.Violations))
	}
	if report.Violations[0].Severity != rules.SeverityMedium {
		t.Errorf("severity = %s, want medium (declared)", report.Violations[0].Severity)
	}
	if report.Score != 95 {
		t.Errorf("score = %d, want 95 (one medium deduction)", report.Score)
	}
	if !report.Passed {
		t.Error("a single medium violation at 95 should still pass")
	}
}

func TestValidate_BothChecksCanFireForOneMandate(t *testing.T) {
	report := Validate("store everything in plaintext", []rules.Mandate{passwordMandate()})

	// Anti-pattern fires (plaintext present) AND reference check fires
	// (no bcrypt/argon2) — two violations from one mandate.
	if len(report.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(report.Violations))
	}
	if report.Score != 50 {
		t.Errorf("score = %d, want 50 (two critical deductions)", report.Score)
	}
}

func TestValidate_EmptyArtifactFailsAllReferenceChecks(t *testing.T) {
	mandates := []rules.Mandate{
		passwordMandate(),
		{ID: "a", Severity: rules.SeverityHigh, RequiredReferenceTokens: []string{"x"}},
		{ID: "b", Severity: rules.SeverityLow, RequiredReferenceTokens: []string{"y"}},
	}

	report := Validate("", mandates)

	if len(report.Violations) != 3 {
		t.Errorf("violations = %d, want 3 (blank artifact satisfies nothing)", len(report.Violations))
	}
	if report.Passed {
		t.Error("blank artifact must not pass a non-empty mandate set")
	}
}

// --- Pattern matching ---

func TestValidate_SubstringMatchIsCaseInsensitive(t *testing.T) {
	report := Validate("Store PLAINTEXT passwords", []rules.Mandate{passwordMandate()})
	if len(report.Violations) == 0 {
		t.Error("uppercase anti-pattern text not detected")
	}
}

func TestValidate_RegexPattern(t *testing.T) {
	m := rules.Mandate{
		ID:                "password_hashing",
		Severity:          rules.SeverityCritical,
		ViolationPatterns: []string{`regex:\bmd5\s*\(\s*password`},
	}

	hit := Validate("digest = MD5(password)", []rules.Mandate{m})
	if len(hit.Violations) != 1 {
		t.Errorf("regex pattern not matched: %v", hit.Violations)
	}

	miss := Validate("md5sum of the release tarball", []rules.Mandate{m})
	if len(miss.Violations) != 0 {
		t.Errorf("regex pattern matched unrelated text: %v", miss.Violations)
	}
}

func TestValidate_InvalidRegexFallsBackToSubstring(t *testing.T) {
	// Unvalidated tables can carry broken regexes; validation must stay
	// total and treat the body as a literal.
	m := rules.Mandate{
		ID:                "broken",
		Severity:          rules.SeverityHigh,
		ViolationPatterns: []string{"regex:[unclosed"},
	}

	hit := Validate("this contains [unclosed literally", []rules.Mandate{m})
	if len(hit.Violations) != 1 {
		t.Errorf("literal fallback did not match: %v", hit.Violations)
	}

	miss := Validate("nothing relevant", []rules.Mandate{m})
	if len(miss.Violations) != 0 {
		t.Errorf("literal fallback false positive: %v", miss.Violations)
	}
}

// --- Score properties ---

func TestValidate_ScoreBounds(t *testing.T) {
	// Enough critical mandates to drive the raw score far below zero.
	var mandates []rules.Mandate
	for i := 0; i < 10; i++ {
		mandates = append(mandates, rules.Mandate{
			ID:                string(rune('a' + i)),
			Severity:          rules.SeverityCritical,
			ViolationPatterns: []string{"bad idea"},
		})
	}

	report := Validate("a very bad idea", mandates)
	if report.Score < 0 || report.Score > 100 {
		t.Errorf("score = %d, out of [0,100]", report.Score)
	}
	if report.Score != 0 {
		t.Errorf("score = %d, want clamped to 0", report.Score)
	}
}

func TestValidate_Monotonicity(t *testing.T) {
	artifact := "no references here"
	base := []rules.Mandate{
		{ID: "a", Severity: rules.SeverityMedium, RequiredReferenceTokens: []string{"x"}},
	}
	extended := append([]rules.Mandate{}, base...)
	extended = append(extended, rules.Mandate{
		ID: "b", Severity: rules.SeverityLow, RequiredReferenceTokens: []string{"y"},
	})

	before := Validate(artifact, base)
	after := Validate(artifact, extended)

	if after.Score > before.Score {
		t.Errorf("adding a failing mandate raised the score: %d -> %d", before.Score, after.Score)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	mandates := selectionTable()
	artifact := "store password plaintext and skip validation"

	first := Validate(artifact, mandates)
	second := Validate(artifact, mandates)

	if first.Score != second.Score || first.Passed != second.Passed {
		t.Errorf("reports differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(first.Violations, second.Violations) {
		t.Errorf("violation lists differ:\n%v\n%v", first.Violations, second.Violations)
	}
}

func TestValidate_ViolationOrdering(t *testing.T) {
	mandates := []rules.Mandate{
		{ID: "low", Severity: rules.SeverityLow, RequiredReferenceTokens: []string{"x"}},
		{ID: "med", Severity: rules.SeverityMedium, RequiredReferenceTokens: []string{"y"}},
		{ID: "crit", Severity: rules.SeverityCritical, ViolationPatterns: []string{"oops"}},
		{ID: "high", Severity: rules.SeverityHigh, RequiredReferenceTokens: []string{"z"}},
	}

	report := Validate("oops", mandates)

	want := []string{"crit", "high", "med", "low"}
	if len(report.Violations) != len(want) {
		t.Fatalf("violations = %d, want %d", len(report.Violations), len(want))
	}
	for i, id := range want {
		if report.Violations[i].MandateID != id {
			t.Errorf("violations[%d] = %s, want %s", i, report.Violations[i].MandateID, id)
		}
	}
}

func TestValidate_PassBoundary(t *testing.T) {
	// Exactly one high violation: 90, passes. One high + one low: 88, fails.
	high := rules.Mandate{ID: "h", Severity: rules.SeverityHigh, RequiredReferenceTokens: []string{"x"}}
	low := rules.Mandate{ID: "l", Severity: rules.SeverityLow, RequiredReferenceTokens: []string{"y"}}

	at := Validate("nothing", []rules.Mandate{high})
	if at.Score != 90 || !at.Passed {
		t.Errorf("score=%d passed=%v, want 90/true at the boundary", at.Score, at.Passed)
	}

	below := Validate("nothing", []rules.Mandate{high, low})
	if below.Score != 88 || below.Passed {
		t.Errorf("score=%d passed=%v, want 88/false below the boundary", below.Score, below.Passed)
	}
}

func TestValidate_CriticalFailsEvenAboveThreshold(t *testing.T) {
	// Passed requires BOTH the threshold and zero critical violations;
	// the critical flag is checked independently of the score.
	m := rules.Mandate{ID: "c", Severity: rules.SeverityCritical, ViolationPatterns: []string{"bad"}}
	report := Validate("bad", []rules.Mandate{m})
	if report.Passed {
		t.Error("critical violation must fail the report")
	}
}
