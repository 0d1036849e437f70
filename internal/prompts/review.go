// Package prompts implements MCP prompt handlers for the Mandate server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the mandate-review MCP prompt.
// It guides the AI through the full draft-review-revise loop for a request.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("mandate-review",
		mcp.WithPromptDescription(
			"Run a request through the full compliance loop: classify it, "+
				"draft an artifact that satisfies the applicable mandates, "+
				"validate it, and revise until it passes.",
		),
		mcp.WithArgument("request",
			mcp.ArgumentDescription("The request to work on"),
		),
	)
}

// Handle processes the mandate-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	request := "my request"
	if args := req.Params.Arguments; args != nil {
		if r, ok := args["request"]; ok && r != "" {
			request = r
		}
	}

	return &mcp.GetPromptResult{
		Description: "Mandate compliance review loop",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want you to work on this request under mandate review: %s\n\n"+
						"Please:\n"+
						"1. Run `mandate_classify` with my request to see which mandates apply\n"+
						"2. Draft the artifact (prompt, spec, or plan) so it satisfies every applicable mandate\n"+
						"3. Run `mandate_review` with my request and your draft\n"+
						"4. If the verdict is FAILED, revise the draft to resolve the violations (CRITICAL first) and review again\n"+
						"5. Only present the artifact to me once the review passes",
					request,
				)),
			},
		},
	}, nil
}
