// Package resources implements MCP resource handlers for the Mandate server.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (mandate://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvca-labs/mandate/internal/rules"
)

// Handler manages Mandate resource endpoints.
type Handler struct {
	rulebook *rules.Rulebook
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(rulebook *rules.Rulebook) *Handler {
	return &Handler{rulebook: rulebook}
}

// RulebookResource returns the MCP resource definition for the active rulebook.
func (h *Handler) RulebookResource() mcp.Resource {
	return mcp.NewResource(
		"mandate://rulebook",
		"Mandate Rulebook",
		mcp.WithResourceDescription("The active mandates and classification rules this server validates against"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleRulebook returns the active rulebook as JSON.
func (h *Handler) HandleRulebook(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.rulebook, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling rulebook: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
