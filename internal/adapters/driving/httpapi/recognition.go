package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// imageResponse describes one reference image.
type imageResponse struct {
	Name        string                    `json:"name"`
	DisplayName string                    `json:"displayName"`
	Formats     []domain.DescriptorFormat `json:"formats,omitempty"`
	Loaded      []string                  `json:"loaded,omitempty"`
}

// descriptorResponse summarises one loaded payload.
type descriptorResponse struct {
	Format domain.DescriptorFormat `json:"format"`
	Size   int                     `json:"size"`
}

// recognizeRequest is the body of POST /api/recognize.
// Candidate bytes travel base64 encoded in candidateData.
type recognizeRequest struct {
	Image         string   `json:"image"`
	Format        string   `json:"format"`
	Candidate     string   `json:"candidate,omitempty"`
	CandidateData []byte   `json:"candidateData,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	type routeResponse struct {
		Path    string `json:"path"`
		Title   string `json:"title"`
		Variant string `json:"variant,omitempty"`
		Legacy  bool   `json:"legacy,omitempty"`
	}
	routes := domain.DefaultRoutes()
	out := make([]routeResponse, len(routes))
	for i, r := range routes {
		out[i] = routeResponse{Path: r.Path, Title: r.Title, Variant: r.Variant, Legacy: r.Legacy}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListImages(w http.ResponseWriter, _ *http.Request) {
	out := []imageResponse{}
	for img := range s.ports.Recognition.ListAvailableImages() {
		out = append(out, imageResponse{Name: img.Name, DisplayName: img.DisplayName})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleImageInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.ports.Recognition.DescriptorInfo(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{
		Name:        info.Image.Name,
		DisplayName: info.Image.DisplayName,
		Formats:     info.Available,
		Loaded:      info.Loaded,
	})
}

// handleLoadDescriptors loads the format named by ?format=, or every declared format.
func (s *Server) handleLoadDescriptors(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var payloads []*domain.DescriptorPayload
	if raw := r.URL.Query().Get("format"); raw != "" {
		format, err := domain.ParseDescriptorFormat(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		p, err := s.ports.Recognition.LoadDescriptor(r.Context(), name, format)
		if err != nil {
			writeError(w, err)
			return
		}
		payloads = append(payloads, p)
	} else {
		all, err := s.ports.Recognition.LoadAllDescriptors(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}
		payloads = all
	}

	out := make([]descriptorResponse, len(payloads))
	for i, p := range payloads {
		out[i] = descriptorResponse{Format: p.Format, Size: p.Size()}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRecognize always answers 200 once the request parses; failures are in the result.
func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	format, err := domain.ParseDescriptorFormat(req.Format)
	if err != nil {
		writeError(w, err)
		return
	}
	candidate := domain.CandidateLocator(req.Candidate)
	if req.CandidateData != nil {
		candidate = domain.CandidateBytes(req.CandidateData)
	}
	if candidate.IsEmpty() {
		writeError(w, errors.Join(domain.ErrInvalidInput, errors.New("candidate or candidateData is required")))
		return
	}

	result := s.ports.Recognition.Recognize(r.Context(), candidate, req.Image, format, req.Threshold)
	writeJSON(w, http.StatusOK, result)
}

// handleDescriptorFile serves raw descriptor bytes at their locator path.
func (s *Server) handleDescriptorFile(w http.ResponseWriter, r *http.Request) {
	if s.ports.Descriptors == nil {
		http.NotFound(w, r)
		return
	}
	data, err := s.ports.Descriptors.Fetch(r.Context(), r.URL.Path)
	if errors.Is(err, domain.ErrDescriptorMissing) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}
