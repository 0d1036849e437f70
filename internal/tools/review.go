package tools

import (
	"context"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvca-labs/mandate/internal/compliance"
	"github.com/mvca-labs/mandate/internal/history"
)

// ReviewTool handles the mandate_review MCP tool — the full pipeline:
// classify the request, select the applicable mandates, validate the
// draft artifact, and render the compliance report.
type ReviewTool struct {
	engine  *compliance.Engine
	history *history.Store // nullable — reviews work without history
}

// NewReviewTool creates a ReviewTool with its dependencies.
// hist may be nil — reviews are then simply not persisted.
func NewReviewTool(engine *compliance.Engine, hist *history.Store) *ReviewTool {
	return &ReviewTool{engine: engine, history: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *ReviewTool) Definition() mcp.Tool {
	return mcp.NewTool("mandate_review",
		mcp.WithDescription(
			"Validate a draft artifact (a generated prompt, spec, or plan) against the "+
				"constitutional mandates that apply to the user's request. "+
				"This is the core review loop: generate the artifact yourself, call this tool, "+
				"and if the verdict is FAILED, revise the artifact and call again. "+
				"The report lists every violation with its severity — resolve CRITICAL "+
				"findings first. A review passes at score >= 90 with zero critical violations.",
		),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("The user's request, verbatim. Drives classification and mandate "+
				"selection — do not paraphrase away security-relevant words like 'auth' or 'password'."),
		),
		mcp.WithString("artifact",
			mcp.Required(),
			mcp.Description("The draft artifact to validate, in full. An empty or partial "+
				"artifact fails every required-reference check."),
		),
	)
}

// Handle processes the mandate_review tool call.
func (t *ReviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request := req.GetString("request", "")
	artifact := req.GetString("artifact", "")

	if strings.TrimSpace(request) == "" {
		return mcp.NewToolResultError("'request' is required — pass the user's request verbatim"), nil
	}
	if artifact == "" {
		return mcp.NewToolResultError("'artifact' is required — pass the complete draft artifact to validate"), nil
	}

	result := t.engine.Process(request, artifact)

	// Persistence is best-effort: a history failure must never block
	// the review outcome.
	if t.history != nil {
		if _, err := t.history.SaveReview(request, result); err != nil {
			log.Printf("WARNING: history save: %v", err)
		}
	}

	return mcp.NewToolResultText(renderResult(result)), nil
}
