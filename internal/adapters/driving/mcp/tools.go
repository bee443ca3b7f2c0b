package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// ErrSessionsUnavailable is returned by session tools when no session manager is wired.
var ErrSessionsUnavailable = errors.New("mcp: sessions are not available")

// ListImagesInput is the input schema for the list_images tool.
type ListImagesInput struct{}

// ListImagesOutput is the output schema for the list_images tool.
type ListImagesOutput struct {
	Images []ImageOutput `json:"images"`
	Count  int           `json:"count"`
}

// ImageOutput describes one reference image.
type ImageOutput struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Formats     []string `json:"formats"`
	Loaded      []string `json:"loaded,omitempty"`
}

// ImageInput names a reference image.
type ImageInput struct {
	Image string `json:"image" jsonschema:"the reference image name, e.g. personne"`
}

// LoadDescriptorInput is the input schema for the load_descriptor tool.
type LoadDescriptorInput struct {
	Image  string `json:"image" jsonschema:"the reference image name"`
	Format string `json:"format,omitempty" jsonschema:"descriptor format (fset, fset3, iset, mind); all declared formats when empty"`
}

// LoadDescriptorOutput is the output schema for the load_descriptor tool.
type LoadDescriptorOutput struct {
	Image       string             `json:"image"`
	Descriptors []DescriptorOutput `json:"descriptors"`
}

// DescriptorOutput summarises one loaded payload.
type DescriptorOutput struct {
	Format string `json:"format"`
	Size   int    `json:"size"`
}

// RecognizeInput is the input schema for the recognize tool.
type RecognizeInput struct {
	Image     string   `json:"image" jsonschema:"the reference image name"`
	Format    string   `json:"format" jsonschema:"descriptor format to compare against"`
	Candidate string   `json:"candidate" jsonschema:"locator of the candidate image, resolved like descriptor locators"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"acceptance threshold applied as given; the default threshold when omitted"`
}

// ListSessionsInput is the input schema for the list_sessions tool.
type ListSessionsInput struct{}

// SessionInput names a running session.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session identifier"`
}

// ListSessionsOutput is the output schema for the list_sessions tool.
type ListSessionsOutput struct {
	Sessions []string `json:"sessions"`
}

// SessionStateOutput is a snapshot of one session.
type SessionStateOutput struct {
	ID               string               `json:"id"`
	Variant          string               `json:"variant"`
	Phase            string               `json:"phase"`
	Loading          bool                 `json:"loading"`
	Tracking         bool                 `json:"tracking"`
	DetectedObjectID string               `json:"detected_object_id,omitempty"`
	Error            *domain.SessionError `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_images",
		Description: "List the reference images that can be recognised",
	}, s.handleListImages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "descriptor_info",
		Description: "Show the descriptor formats of a reference image and which are cached",
	}, s.handleDescriptorInfo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_descriptor",
		Description: "Fetch and cache descriptor payloads for a reference image",
	}, s.handleLoadDescriptor)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recognize",
		Description: "Score a candidate image against a reference descriptor",
	}, s.handleRecognize)

	if s.ports.Sessions != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_sessions",
			Description: "List running AR sessions",
		}, s.handleListSessions)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "session_state",
			Description: "Show the state of a running AR session",
		}, s.handleSessionState)
	}
}

func (s *Server) handleListImages(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListImagesInput,
) (*mcp.CallToolResult, ListImagesOutput, error) {
	output := ListImagesOutput{Images: []ImageOutput{}}
	for img := range s.ports.Recognition.ListAvailableImages() {
		out, err := s.imageOutput(img.Name)
		if err != nil {
			return nil, ListImagesOutput{}, err
		}
		output.Images = append(output.Images, out)
	}
	output.Count = len(output.Images)
	return nil, output, nil
}

func (s *Server) handleDescriptorInfo(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ImageInput,
) (*mcp.CallToolResult, ImageOutput, error) {
	out, err := s.imageOutput(input.Image)
	if err != nil {
		return nil, ImageOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) imageOutput(name string) (ImageOutput, error) {
	info, err := s.ports.Recognition.DescriptorInfo(name)
	if err != nil {
		return ImageOutput{}, fmt.Errorf("descriptor info: %w", err)
	}
	formats := make([]string, len(info.Available))
	for i, f := range info.Available {
		formats[i] = f.String()
	}
	return ImageOutput{
		Name:        info.Image.Name,
		DisplayName: info.Image.DisplayName,
		Formats:     formats,
		Loaded:      info.Loaded,
	}, nil
}

func (s *Server) handleLoadDescriptor(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadDescriptorInput,
) (*mcp.CallToolResult, LoadDescriptorOutput, error) {
	var payloads []*domain.DescriptorPayload
	if strings.TrimSpace(input.Format) == "" {
		all, err := s.ports.Recognition.LoadAllDescriptors(ctx, input.Image)
		if err != nil {
			return nil, LoadDescriptorOutput{}, err
		}
		payloads = all
	} else {
		format, err := domain.ParseDescriptorFormat(input.Format)
		if err != nil {
			return nil, LoadDescriptorOutput{}, err
		}
		p, err := s.ports.Recognition.LoadDescriptor(ctx, input.Image, format)
		if err != nil {
			return nil, LoadDescriptorOutput{}, err
		}
		payloads = []*domain.DescriptorPayload{p}
	}

	output := LoadDescriptorOutput{
		Image:       input.Image,
		Descriptors: make([]DescriptorOutput, len(payloads)),
	}
	for i, p := range payloads {
		output.Descriptors[i] = DescriptorOutput{Format: p.Format.String(), Size: p.Size()}
	}
	return nil, output, nil
}

func (s *Server) handleRecognize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecognizeInput,
) (*mcp.CallToolResult, domain.RecognitionResult, error) {
	format, err := domain.ParseDescriptorFormat(input.Format)
	if err != nil {
		return nil, domain.RecognitionResult{}, err
	}
	result := s.ports.Recognition.Recognize(
		ctx, domain.CandidateLocator(input.Candidate), input.Image, format, input.Threshold,
	)
	return nil, result, nil
}

func (s *Server) handleListSessions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListSessionsInput,
) (*mcp.CallToolResult, ListSessionsOutput, error) {
	if s.ports.Sessions == nil {
		return nil, ListSessionsOutput{}, ErrSessionsUnavailable
	}
	ids := s.ports.Sessions.List()
	slices.Sort(ids)
	if ids == nil {
		ids = []string{}
	}
	return nil, ListSessionsOutput{Sessions: ids}, nil
}

func (s *Server) handleSessionState(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SessionStateOutput, error) {
	out, err := s.sessionState(input.SessionID)
	if err != nil {
		return nil, SessionStateOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) sessionState(id string) (SessionStateOutput, error) {
	if s.ports.Sessions == nil {
		return SessionStateOutput{}, ErrSessionsUnavailable
	}
	sess, err := s.ports.Sessions.Get(id)
	if err != nil {
		return SessionStateOutput{}, err
	}
	st := sess.State()
	return SessionStateOutput{
		ID:               sess.ID(),
		Variant:          sess.Variant().Name,
		Phase:            st.PhaseName(),
		Loading:          st.Loading,
		Tracking:         st.Tracking,
		DetectedObjectID: st.DetectedObjectID,
		Error:            st.Error,
	}, nil
}
