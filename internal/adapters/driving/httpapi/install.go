package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// installResponse is the body of the install endpoints.
type installResponse struct {
	domain.InstallState
	Instructions []string `json:"instructions,omitempty"`
}

func (s *Server) handleInstallState(w http.ResponseWriter, r *http.Request) {
	if s.ports.Install == nil {
		writeError(w, errors.Join(domain.ErrNotImplemented, errors.New("install flow is not enabled")))
		return
	}
	standalone, _ := strconv.ParseBool(r.URL.Query().Get("standalone"))
	state := s.ports.Install.State(r.UserAgent(), standalone)
	resp := installResponse{InstallState: state}
	if state.IOS && !state.Installed {
		resp.Instructions = s.ports.Install.Instructions()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleInstall replays the deferred prompt held by the install service.
func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	if s.ports.Install == nil {
		writeError(w, errors.Join(domain.ErrNotImplemented, errors.New("install flow is not enabled")))
		return
	}
	installed, err := s.ports.Install.Install(r.Context(), r.UserAgent())
	if err != nil && !installed {
		writeError(w, err)
		return
	}
	state := s.ports.Install.State(r.UserAgent(), false)
	resp := installResponse{InstallState: state}
	if !installed && state.IOS {
		resp.Instructions = s.ports.Install.Instructions()
	}
	writeJSON(w, http.StatusOK, resp)
}
