package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvca-labs/mandate/internal/classify"
	"github.com/mvca-labs/mandate/internal/compliance"
)

// ClassifyTool handles the mandate_classify MCP tool: classification
// only, no validation. Useful to preview which mandates a request will
// pull in before drafting the artifact.
type ClassifyTool struct {
	engine *compliance.Engine
}

// NewClassifyTool creates a ClassifyTool.
func NewClassifyTool(engine *compliance.Engine) *ClassifyTool {
	return &ClassifyTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("mandate_classify",
		mcp.WithDescription(
			"Classify a user request into its category (SECURITY, DEBUG, REFACTOR, "+
				"PERFORMANCE, DOCUMENTATION, QUESTION, NEW_FEATURE) and list the mandates "+
				"that would apply to it. Call this before drafting an artifact to know "+
				"which constraints to design for. No artifact is validated.",
		),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("The user's request, verbatim."),
		),
	)
}

// Handle processes the mandate_classify tool call.
func (t *ClassifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request := req.GetString("request", "")
	if strings.TrimSpace(request) == "" {
		return mcp.NewToolResultError("'request' is required"), nil
	}

	rb := t.engine.Rulebook()
	category := classify.Classify(request, rb.ClassificationRules)
	mandates := compliance.SelectMandates(category, request, rb.Mandates)

	var sb strings.Builder
	sb.WriteString("# Request Classification\n\n")
	fmt.Fprintf(&sb, "**Category:** %s\n", category)
	fmt.Fprintf(&sb, "**Applicable mandates:** %d\n\n", len(mandates))

	if len(mandates) > 0 {
		sb.WriteString("## Applicable Mandates\n\n")
		for _, m := range mandates {
			fmt.Fprintf(&sb, "- %s **%s**: %s\n", labelFor(m.Severity), m.ID, m.Description)
			if len(m.RequiredReferenceTokens) > 0 {
				fmt.Fprintf(&sb, "  - must reference one of: %s\n", strings.Join(m.RequiredReferenceTokens, ", "))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Design the artifact to satisfy every mandate above, then validate it with `mandate_review`.\n")

	return mcp.NewToolResultText(sb.String()), nil
}
