// ABOUTME: MCP resource implementations for lifeos.
// ABOUTME: Provides lifeos://summary and lifeos://registry resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/lifeos/internal/registry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	summaryURI  = "lifeos://summary"
	registryURI = "lifeos://registry"
)

func (s *Server) registerResources() {
	// lifeos://summary - scores, latest vitals, today's habits and focus progress
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Life OS Summary",
		Description: "Composite scores, latest vitals, today's habits and focus goal progress",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         registryURI,
		Name:        "Metric Registry",
		Description: "Every metric definition with kind, unit, bounds and formula",
		MIMEType:    "application/json",
	}, s.handleRegistryResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sum, err := s.svc.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return jsonResource(summaryURI, sum)
}

func (s *Server) handleRegistryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(registryURI, registry.All())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
