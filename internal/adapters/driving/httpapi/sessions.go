package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
	"github.com/custodia-labs/arvision/internal/logger"
)

// errNoSessions is returned when the server runs without a session manager.
var errNoSessions = errors.Join(domain.ErrNotImplemented, errors.New("sessions are not enabled"))

// createSessionRequest is the body of POST /api/sessions.
type createSessionRequest struct {
	Variant string   `json:"variant"`
	Targets []string `json:"targets,omitempty"`
}

// sessionResponse is a snapshot of one session.
type sessionResponse struct {
	ID      string              `json:"id"`
	Variant string              `json:"variant"`
	Phase   string              `json:"phase"`
	State   domain.SessionState `json:"state"`
	Object  *domain.ARObject    `json:"object,omitempty"`
}

func newSessionResponse(sess driving.SessionController) sessionResponse {
	st := sess.State()
	resp := sessionResponse{
		ID:      sess.ID(),
		Variant: sess.Variant().Name,
		Phase:   st.PhaseName(),
		State:   st,
	}
	if obj, ok := domain.LookupARObject(st.DetectedObjectID); ok {
		resp.Object = &obj
	}
	return resp
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	if s.ports.Sessions == nil {
		writeError(w, errNoSessions)
		return
	}
	out := []sessionResponse{}
	for _, id := range s.ports.Sessions.List() {
		sess, err := s.ports.Sessions.Get(id)
		if err != nil {
			continue
		}
		out = append(out, newSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.ports.Sessions == nil {
		writeError(w, errNoSessions)
		return
	}
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.ports.Sessions.Create(driving.SessionOptions{
		Variant:   req.Variant,
		Targets:   req.Targets,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (driving.SessionController, bool) {
	if s.ports.Sessions == nil {
		writeError(w, errNoSessions)
		return nil, false
	}
	sess, err := s.ports.Sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if s.ports.Sessions == nil {
		writeError(w, errNoSessions)
		return
	}
	if err := s.ports.Sessions.Close(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStartSession starts the session in the background; the engine
// becomes ready once the bridge posts its events.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx := s.ctx
	go func() {
		if err := sess.Start(ctx); err != nil && !errors.Is(err, domain.ErrSessionClosed) {
			logger.Warn("session %s failed to start: %v", sess.ID(), err)
		}
	}()
	writeJSON(w, http.StatusAccepted, newSessionResponse(sess))
}

func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	if s.ports.Events == nil {
		writeError(w, errors.Join(domain.ErrNotImplemented, errors.New("event relay is not enabled")))
		return
	}
	var ev domain.EngineEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, err)
		return
	}
	if err := ev.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ports.Events.Route(mux.Vars(r)["id"], ev); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
