package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/source"
	"github.com/JonMunkholm/graticard/internal/store"
)

// checkKind accepts an empty kind or a known source kind.
func checkKind(k source.Kind) (source.Kind, error) {
	switch k {
	case "", source.KindList, source.KindDocument:
		return k, nil
	default:
		return "", badRequest("unknown kind %q", k)
	}
}

// parseKind reads the optional kind query parameter.
func parseKind(r *http.Request) (source.Kind, error) {
	return checkKind(source.Kind(r.URL.Query().Get("kind")))
}

// handleListTemplates returns saved mapping templates, optionally by kind.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	templates, err := s.templates.List(r.Context(), kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if templates == nil {
		templates = []store.Template{}
	}
	writeJSON(w, templates)
}

// handleMatchTemplates finds templates matching the provided headers.
func (s *Server) handleMatchTemplates(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	headersStr := r.URL.Query().Get("headers")
	if headersStr == "" {
		respondError(w, r, badRequest("missing headers parameter"))
		return
	}

	headers := strings.Split(headersStr, ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	matches, err := store.MatchTemplates(r.Context(), s.templates, kind, headers)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if matches == nil {
		matches = []store.TemplateMatch{}
	}
	writeJSON(w, matches)
}

// handleGetTemplate returns a single mapping template by ID.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, t)
}

// handleCreateTemplate saves a new mapping template. The labels must form a
// valid mapping.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string             `json:"name"`
		Kind    source.Kind        `json:"kind"`
		Labels  core.ColumnMapping `json:"labels"`
		Headers []string           `json:"headers"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := checkKind(req.Kind); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := s.templates.Save(r.Context(), store.Template{
		Name:    req.Name,
		Kind:    req.Kind,
		Labels:  req.Labels,
		Headers: req.Headers,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, t)
}

// handleDeleteTemplate removes a mapping template.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
