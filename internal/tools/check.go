package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvca-labs/mandate/internal/compliance"
)

// CheckTool handles the mandate_check MCP tool: validate an artifact
// directly, skipping classification. The feature text controls which
// triggered mandates join the always-on set; when omitted, the artifact
// itself is used as the trigger source.
type CheckTool struct {
	engine *compliance.Engine
}

// NewCheckTool creates a CheckTool.
func NewCheckTool(engine *compliance.Engine) *CheckTool {
	return &CheckTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckTool) Definition() mcp.Tool {
	return mcp.NewTool("mandate_check",
		mcp.WithDescription(
			"Validate an artifact against the mandates without going through "+
				"request classification. Use mandate_review for the normal loop; "+
				"use this when you only have the artifact, or when re-checking a "+
				"revised draft against a known feature description.",
		),
		mcp.WithString("artifact",
			mcp.Required(),
			mcp.Description("The artifact to validate, in full."),
		),
		mcp.WithString("feature_text",
			mcp.Description("Optional feature description used for mandate trigger "+
				"matching. Defaults to the artifact text itself."),
		),
	)
}

// Handle processes the mandate_check tool call.
func (t *CheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	artifact := req.GetString("artifact", "")
	if artifact == "" {
		return mcp.NewToolResultError("'artifact' is required"), nil
	}

	featureText := req.GetString("feature_text", "")
	if featureText == "" {
		featureText = artifact
	}

	rb := t.engine.Rulebook()
	mandates := compliance.SelectMandates("", featureText, rb.Mandates)
	report := compliance.Validate(artifact, mandates)

	return mcp.NewToolResultText(renderReport(report)), nil
}
