package web

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/logging"
	"github.com/JonMunkholm/graticard/internal/pipeline"
	"github.com/JonMunkholm/graticard/internal/source"
	"github.com/JonMunkholm/graticard/internal/store"
)

// maxUploadFiles bounds the files accepted by one upload request.
const maxUploadFiles = 10

// sourceView is the list representation of a source, without rows.
type sourceView struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Kind     string             `json:"kind"`
	Role     pipeline.Role      `json:"role"`
	Status   pipeline.Status    `json:"status"`
	Rows     int                `json:"rows"`
	Width    int                `json:"width"`
	Entities int                `json:"entities"`
	Mapping  core.ColumnMapping `json:"mapping,omitempty"`
}

func newSourceView(src *pipeline.Source) sourceView {
	return sourceView{
		ID:       src.ID,
		Name:     src.Name,
		Kind:     string(src.Kind),
		Role:     src.Role,
		Status:   src.Status,
		Rows:     len(src.Rows),
		Width:    src.Width(),
		Entities: len(src.Entities),
		Mapping:  src.Mapping,
	}
}

// uploadFailure reports one file that could not be loaded.
type uploadFailure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  string `json:"detail"`
}

// uploadResponse lists the sources added by an upload and the files that failed.
type uploadResponse struct {
	Added  []sourceView    `json:"added"`
	Failed []uploadFailure `json:"failed,omitempty"`
}

// handleAddSources loads the multipart "files" into the session. Files that
// fail are reported without affecting the others; the request only fails
// when nothing could be added.
func (s *Server) handleAddSources(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.uploads.Acquire(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.uploads.Release()

	maxSize := s.cfg.Source.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize*maxUploadFiles+maxJSONBody)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, badRequest("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	switch {
	case len(headers) == 0:
		respondError(w, r, badRequest("no files provided"))
		return
	case len(headers) > maxUploadFiles:
		respondError(w, r, badRequest("at most %d files per upload", maxUploadFiles))
		return
	}

	logger := logging.FromContext(r.Context())
	var (
		resp     uploadResponse
		firstErr error
	)
	for _, fh := range headers {
		table, err := s.readUpload(fh.Filename, fh.Size, fh.Open)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			msg := core.MapError(err)
			resp.Failed = append(resp.Failed, uploadFailure{
				Name:    fh.Filename,
				Message: msg.Message,
				Code:    msg.Code,
				Detail:  err.Error(),
			})
			logger.Warn("upload rejected", "file", fh.Filename, "error", err)
			continue
		}
		resp.Added = append(resp.Added, newSourceView(sess.Add(table)))
	}

	if len(resp.Added) == 0 {
		respondError(w, r, firstErr)
		return
	}
	writeJSONStatus(w, http.StatusCreated, resp)
}

// readUpload parses one multipart file with the adapter for its extension.
func (s *Server) readUpload(name string, size int64, open func() (multipart.File, error)) (*source.Table, error) {
	f, err := open()
	if err != nil {
		return nil, &source.UnreadableSourceError{Path: name, Err: err}
	}
	defer f.Close()

	return s.loader.Read(name, f, size)
}

// handleListSources returns every source of the session in insertion order.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sources := sess.Sources()
	out := make([]sourceView, len(sources))
	for i, src := range sources {
		out[i] = newSourceView(src)
	}
	writeJSON(w, out)
}

// handleGetSource returns one source including its raw rows and entities.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	src, err := sess.Source(chi.URLParam(r, "sourceID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, src)
}

// handleRemoveSource drops a source from the session.
func (s *Server) handleRemoveSource(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := sess.Remove(chi.URLParam(r, "sourceID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetRole moves a pending source to the other side of the merge.
func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	role, ok := pipeline.ParseRole(req.Role)
	if !ok {
		respondError(w, r, badRequest("unknown role %q", req.Role))
		return
	}

	src, err := sess.SetRole(chi.URLParam(r, "sourceID"), role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newSourceView(src))
}

// handleRemoveRows drops raw rows, such as header lines, before parsing.
func (s *Server) handleRemoveRows(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Rows []int `json:"rows"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	src, err := sess.RemoveRows(chi.URLParam(r, "sourceID"), req.Rows...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, src)
}

// nextResponse is the next source awaiting a mapping plus saved templates
// whose headers resemble its first row.
type nextResponse struct {
	Source      *pipeline.Source      `json:"source"`
	Suggestions []store.TemplateMatch `json:"suggestions"`
	Labels      []string              `json:"labels"`
}

// handleNextSource returns the first pending source, or 204 once every
// source has been parsed.
func (s *Server) handleNextSource(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	src, ok := sess.Advance()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := nextResponse{Source: src, Labels: core.Labels()}
	if len(src.Rows) > 0 {
		matches, err := store.MatchTemplates(r.Context(), s.templates, src.Kind, src.Rows[0])
		if err != nil {
			logging.FromContext(r.Context()).Warn("template suggestions unavailable", "error", err)
		}
		resp.Suggestions = matches
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []store.TemplateMatch{}
	}
	writeJSON(w, resp)
}

// handleParseSource applies a column mapping, given directly as labels or
// through a saved template.
func (s *Server) handleParseSource(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Labels     core.ColumnMapping `json:"labels"`
		TemplateID string             `json:"template_id"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	mapping := req.Labels
	switch {
	case req.TemplateID != "" && len(req.Labels) > 0:
		respondError(w, r, badRequest("give labels or template_id, not both"))
		return
	case req.TemplateID != "":
		t, err := s.templates.Get(r.Context(), req.TemplateID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		mapping = t.Labels
	}

	src, err := sess.Parse(chi.URLParam(r, "sourceID"), mapping)
	if err != nil {
		respondError(w, r, fmt.Errorf("parse source: %w", err))
		return
	}
	writeJSON(w, src)
}
