// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it loads the rulebook, creates the
// engine and the optional history store, and injects them into the
// tools/prompts/resources. No compliance logic lives here, only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvca-labs/mandate/internal/compliance"
	"github.com/mvca-labs/mandate/internal/history"
	"github.com/mvca-labs/mandate/internal/prompts"
	"github.com/mvca-labs/mandate/internal/resources"
	"github.com/mvca-labs/mandate/internal/rules"
	"github.com/mvca-labs/mandate/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. rulebookPath selects a custom rulebook
// file (JSON or YAML); when empty, the builtin rulebook is used. A bad
// rulebook is fatal here: serving with a partial table would silently
// skip mandates.
//
// The returned cleanup function closes the history store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if history init failed.
func New(rulebookPath string) (*server.MCPServer, func(), error) {
	// --- Load the rulebook ---

	var rulebook *rules.Rulebook
	var err error
	if rulebookPath == "" {
		rulebook, err = rules.DefaultRulebook()
	} else {
		rulebook, err = rules.LoadRulebookFile(rulebookPath)
	}
	if err != nil {
		return nil, noop, fmt.Errorf("loading rulebook: %w", err)
	}

	engine := compliance.NewEngine(rulebook)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"mandate",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- History subsystem ---
	//
	// History is optional: if it fails to initialize, reviews still
	// work, they just aren't persisted. We log a warning and register
	// the history tools anyway; they handle the nil store themselves.

	cleanup := noop
	hist, histErr := history.New(history.DefaultConfig())
	if histErr != nil {
		log.Printf("WARNING: review history disabled: %v", histErr)
		hist = nil
	} else {
		cleanup = func() {
			if err := hist.Close(); err != nil {
				log.Printf("WARNING: history store close: %v", err)
			}
		}
	}

	// --- Register tools ---

	reviewTool := tools.NewReviewTool(engine, hist)
	s.AddTool(reviewTool.Definition(), reviewTool.Handle)

	classifyTool := tools.NewClassifyTool(engine)
	s.AddTool(classifyTool.Definition(), classifyTool.Handle)

	checkTool := tools.NewCheckTool(engine)
	s.AddTool(checkTool.Definition(), checkTool.Handle)

	historyTool := tools.NewHistoryTool(hist)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	statsTool := tools.NewStatsTool(hist)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	// --- Register prompts ---

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(rulebook)
	s.AddResource(resourceHandler.RulebookResource(), resourceHandler.HandleRulebook)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when history
// is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the Mandate server effectively.
func serverInstructions() string {
	return `You have access to Mandate, a constitutional compliance MCP server.

## What Mandate Does

Mandate validates artifacts YOU generate (prompts, specs, plans) against a
rulebook of engineering mandates before you present them to the user. It
classifies the user's request, selects the mandates that apply, and scores
your draft: 100 minus deductions per violation. A draft passes at score >= 90
with zero CRITICAL violations.

## The Review Loop

For any request that will produce a substantive artifact:

1. Call mandate_classify with the user's request (verbatim) to see the
   category and the mandates you must design for
2. Draft the artifact yourself, satisfying every applicable mandate:
   - Avoid every listed anti-pattern
   - Include at least one of each mandate's required references
3. Call mandate_review with the request and your complete draft
4. If the verdict is FAILED, revise and review again. Resolve CRITICAL
   violations first; they fail the review regardless of score.
5. Present the artifact only after the review passes

## Important Rules

- Pass the user's request VERBATIM — classification and mandate selection
  key off its wording
- Pass the COMPLETE artifact — a partial draft fails required-reference
  checks it would otherwise satisfy
- NEVER weaken an artifact to dodge an anti-pattern string; fix the design
- Security-adjacent requests (auth, passwords, sessions, user input) pull in
  CRITICAL mandates — expect bcrypt/argon2, input validation, and rate
  limiting to be required references
- Use mandate_check when you only have an artifact and no originating request
- Use mandate_history and mandate_stats to spot mandates you repeatedly
  violate, and adjust how you draft

## Resources

- mandate://rulebook — the active mandates and classification rules as JSON.
  Read it when you need the exact trigger keywords, anti-patterns, or
  required references.`
}
