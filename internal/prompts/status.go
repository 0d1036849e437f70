package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the mandate-status MCP prompt.
// It instructs the AI to read and present the review audit log state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("mandate-status",
		mcp.WithPromptDescription(
			"Check compliance review activity. Shows recent reviews, "+
				"pass rate, and the mandates that keep failing.",
		),
	)
}

// Handle processes the mandate-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Mandate review status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `mandate_stats` and `mandate_history` to check my compliance review activity.\n\n" +
						"Then:\n" +
						"1. Summarize the pass rate and average score\n" +
						"2. Highlight the most violated mandates and what they require\n" +
						"3. Point out any recent failed reviews worth revisiting\n" +
						"4. Suggest what to watch for in upcoming work",
				),
			},
		},
	}, nil
}
