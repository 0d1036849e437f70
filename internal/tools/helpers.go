// Package tools implements the MCP tool handlers for the Mandate engine.
//
// Each tool is a struct that receives its dependencies at construction
// and exposes Definition()/Handle() for registration. Tools are thin:
// they parse arguments, call the engine, and render markdown — all
// compliance logic lives in the compliance and rules packages.
//
// Error convention (same as the rest of the server): user mistakes
// (missing arguments) come back as mcp.NewToolResultError so the AI can
// correct itself; system failures (history I/O) are returned as errors.
package tools

import (
	"fmt"
	"strings"

	"github.com/mvca-labs/mandate/internal/compliance"
	"github.com/mvca-labs/mandate/internal/rules"
)

// severityLabel maps severities to the marker used in rendered reports.
var severityLabel = map[rules.Severity]string{
	rules.SeverityCritical: "🔴 CRITICAL",
	rules.SeverityHigh:     "🟠 HIGH",
	rules.SeverityMedium:   "🟡 MEDIUM",
	rules.SeverityLow:      "⚪ LOW",
}

func labelFor(s rules.Severity) string {
	if l, ok := severityLabel[s]; ok {
		return l
	}
	return strings.ToUpper(string(s))
}

// renderResult renders a full pipeline result as a markdown report.
func renderResult(result compliance.Result) string {
	var sb strings.Builder

	sb.WriteString("# Compliance Review\n\n")
	fmt.Fprintf(&sb, "**Category:** %s\n", result.Category)
	fmt.Fprintf(&sb, "**Applicable mandates:** %d\n\n", len(result.Mandates))

	if len(result.Mandates) > 0 {
		sb.WriteString("## Applicable Mandates\n\n")
		for _, m := range result.Mandates {
			fmt.Fprintf(&sb, "- **%s** (%s): %s\n", m.ID, m.Severity, m.Description)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(renderReport(result.Report))
	return sb.String()
}

// renderReport renders a compliance report section: score, verdict,
// and the violation list (already ordered critical first).
func renderReport(report compliance.Report) string {
	var sb strings.Builder

	sb.WriteString("## Verdict\n\n")
	fmt.Fprintf(&sb, "**Score:** %d/100 (pass threshold: %d)\n", report.Score, compliance.PassThreshold)
	if report.Passed {
		sb.WriteString("**Result:** ✅ PASSED\n\n")
	} else {
		sb.WriteString("**Result:** ❌ FAILED\n\n")
	}

	if len(report.Violations) > 0 {
		sb.WriteString("## Violations\n\n")
		for _, v := range report.Violations {
			fmt.Fprintf(&sb, "- %s `%s` — %s\n", labelFor(v.Severity), v.MandateID, v.Message)
		}
		sb.WriteString("\n")
	}

	if !report.Passed {
		sb.WriteString("## Next Step\n\n")
		sb.WriteString("Revise the artifact to resolve the violations above — ")
		sb.WriteString("address every CRITICAL finding first — then call `mandate_review` again. ")
		sb.WriteString("Do not present the artifact to the user until the review passes.\n")
	}

	return sb.String()
}
