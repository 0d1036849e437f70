package compliance

import (
	"github.com/mvca-labs/mandate/internal/classify"
	"github.com/mvca-labs/mandate/internal/rules"
)

// Engine is the pipeline orchestrator: classify → select → validate.
// It holds a shared immutable rulebook and nothing else, so a single
// Engine serves any number of concurrent callers.
type Engine struct {
	rulebook *rules.Rulebook
}

// NewEngine creates an Engine over a validated rulebook. The rulebook
// must not be mutated after this call.
func NewEngine(rb *rules.Rulebook) *Engine {
	return &Engine{rulebook: rb}
}

// Result is the full outcome of one pipeline run.
type Result struct {
	Category string          `json:"category"`
	Mandates []rules.Mandate `json:"mandates"`
	Report   Report          `json:"report"`
}

// Process runs the whole pipeline for one request: classifies the raw
// input, selects the applicable mandates from it, and validates the
// draft artifact against them.
//
// Process is a pure function of its arguments and the rulebook — same
// inputs, same Result, every time. A failed compliance check is an
// ordinary Result with Report.Passed == false, never an error.
func (e *Engine) Process(rawInput, draftArtifact string) Result {
	category := classify.Classify(rawInput, e.rulebook.ClassificationRules)
	mandates := SelectMandates(category, rawInput, e.rulebook.Mandates)
	report := Validate(draftArtifact, mandates)

	return Result{
		Category: category,
		Mandates: mandates,
		Report:   report,
	}
}

// Rulebook exposes the engine's immutable rulebook for read-only use
// (resource handlers, report rendering).
func (e *Engine) Rulebook() *rules.Rulebook {
	return e.rulebook
}
