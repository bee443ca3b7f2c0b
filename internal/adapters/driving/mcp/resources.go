package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for arvision resources.
	uriScheme = "arvision://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "images",
		Name:        "images",
		Description: "Reference images in catalog order",
		MIMEType:    "application/json",
	}, s.handleImagesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "images/{name}",
		Name:        "image-descriptors",
		Description: "Descriptor formats of a reference image",
		MIMEType:    "application/json",
	}, s.handleImageResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "objects",
		Name:        "objects",
		Description: "Overlay objects shown when a target is recognised",
		MIMEType:    "application/json",
	}, s.handleObjectsResource)

	if s.ports.Sessions != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "sessions/{sessionId}",
			Name:        "session-state",
			Description: "State of a running AR session",
			MIMEType:    "application/json",
		}, s.handleSessionResource)
	}
}

// handleImagesResource returns the catalog summaries.
func (s *Server) handleImagesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	images := []domain.ImageSummary{}
	for img := range s.ports.Recognition.ListAvailableImages() {
		images = append(images, img)
	}
	type imageInfo struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
	}
	infos := make([]imageInfo, len(images))
	for i, img := range images {
		infos[i] = imageInfo{Name: img.Name, DisplayName: img.DisplayName}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleImageResource returns descriptor info for one image.
func (s *Server) handleImageResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractImageName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	out, err := s.imageOutput(name)
	if errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrFetchFailed) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(req.Params.URI, out)
}

// handleObjectsResource returns the overlay objects.
func (s *Server) handleObjectsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResult(req.Params.URI, domain.AllARObjects())
}

// handleSessionResource returns the state of one session.
func (s *Server) handleSessionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractSessionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	out, err := s.sessionState(id)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, ErrSessionsUnavailable) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(req.Params.URI, out)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractImageName extracts the image name from a URI like arvision://images/{name}.
func extractImageName(uri string) string {
	return trimPrefix(uri, uriScheme+"images/")
}

// extractSessionID extracts the session ID from a URI like arvision://sessions/{sessionId}.
func extractSessionID(uri string) string {
	return trimPrefix(uri, uriScheme+"sessions/")
}

func trimPrefix(uri, prefix string) string {
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(uri, prefix)
	if strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
