package web

import (
	"net/http"

	"github.com/JonMunkholm/graticard/internal/pipeline"
)

// handleCreateSession starts an empty reconciliation session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSONStatus(w, http.StatusCreated, sess.Summary())
}

// handleListSessions returns a summary of every open session, oldest first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.sessions.List()
	out := make([]pipeline.Summary, len(sessions))
	for i, sess := range sessions {
		out[i] = sess.Summary()
	}
	writeJSON(w, out)
}

// handleGetSession returns the session summary.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, sess.Summary())
}

// handleDeleteSession discards a session and all of its sources.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.sessions.Delete(sess.ID()); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
