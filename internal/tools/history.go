package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvca-labs/mandate/internal/history"
)

// HistoryTool handles the mandate_history MCP tool: recent reviews from
// the audit log, with their violations.
type HistoryTool struct {
	history *history.Store
}

// NewHistoryTool creates a HistoryTool. hist may be nil when the
// history subsystem failed to initialize.
func NewHistoryTool(hist *history.Store) *HistoryTool {
	return &HistoryTool{history: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("mandate_history",
		mcp.WithDescription(
			"List recent compliance reviews from the audit log, newest first, "+
				"including their violations. Use it to see which mandates keep "+
				"failing across sessions.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of reviews to return. Defaults to the server limit."),
		),
	)
}

// Handle processes the mandate_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.history == nil {
		return mcp.NewToolResultError("review history is not available on this server"), nil
	}

	limit := int(req.GetFloat("limit", 0))

	reviews, err := t.history.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("load recent reviews: %w", err)
	}
	if len(reviews) == 0 {
		return mcp.NewToolResultText("No reviews recorded yet."), nil
	}

	var sb strings.Builder
	sb.WriteString("# Recent Reviews\n\n")
	for _, r := range reviews {
		verdict := "❌ FAILED"
		if r.Passed {
			verdict = "✅ PASSED"
		}
		fmt.Fprintf(&sb, "## %s — %s\n\n", r.CreatedAt, verdict)
		fmt.Fprintf(&sb, "- **Category:** %s\n", r.Category)
		fmt.Fprintf(&sb, "- **Score:** %d/100\n", r.Score)
		fmt.Fprintf(&sb, "- **Request:** %s\n", r.RequestExcerpt)

		if r.ViolationCount > 0 {
			violations, err := t.history.Violations(r.ID)
			if err != nil {
				return nil, fmt.Errorf("load violations for %s: %w", r.ID, err)
			}
			sb.WriteString("- **Violations:**\n")
			for _, v := range violations {
				fmt.Fprintf(&sb, "  - %s `%s` — %s\n", labelFor(v.Severity), v.MandateID, v.Message)
			}
		}
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// StatsTool handles the mandate_stats MCP tool: aggregate pass rate,
// average score, most-violated mandates, and reviews per category.
type StatsTool struct {
	history *history.Store
}

// NewStatsTool creates a StatsTool. hist may be nil when the history
// subsystem failed to initialize.
func NewStatsTool(hist *history.Store) *StatsTool {
	return &StatsTool{history: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("mandate_stats",
		mcp.WithDescription(
			"Aggregate statistics over all recorded compliance reviews: total "+
				"reviews, pass rate, average score, most-violated mandates, and "+
				"review counts per request category.",
		),
	)
}

// Handle processes the mandate_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.history == nil {
		return mcp.NewToolResultError("review history is not available on this server"), nil
	}

	stats, err := t.history.Stats()
	if err != nil {
		return nil, fmt.Errorf("load review stats: %w", err)
	}
	if stats.TotalReviews == 0 {
		return mcp.NewToolResultText("No reviews recorded yet."), nil
	}

	var sb strings.Builder
	sb.WriteString("# Review Statistics\n\n")
	fmt.Fprintf(&sb, "- **Total reviews:** %d\n", stats.TotalReviews)
	fmt.Fprintf(&sb, "- **Passed:** %d (%.0f%%)\n", stats.PassedCount, stats.PassRate*100)
	fmt.Fprintf(&sb, "- **Average score:** %.1f\n\n", stats.AverageScore)

	if len(stats.TopViolated) > 0 {
		sb.WriteString("## Most Violated Mandates\n\n")
		for _, mc := range stats.TopViolated {
			fmt.Fprintf(&sb, "- `%s`: %d violations\n", mc.MandateID, mc.Count)
		}
		sb.WriteString("\n")
	}

	if len(stats.ByCategory) > 0 {
		sb.WriteString("## Reviews by Category\n\n")
		for _, cc := range stats.ByCategory {
			fmt.Fprintf(&sb, "- %s: %d\n", cc.Category, cc.Count)
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
