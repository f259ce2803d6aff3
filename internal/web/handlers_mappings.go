package web

import (
	"net/http"

	"github.com/JonMunkholm/graticard/internal/core"
)

// fieldsResponse describes the mapping vocabulary.
type fieldsResponse struct {
	Labels       []string   `json:"labels"`
	AddressSets  [][]string `json:"address_sets"`
	RequiredName string     `json:"required"`
}

// handleListFields returns the labels a column may carry and the address
// sets a valid mapping must complete.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	sets := make([][]string, len(core.AddressSets))
	for i, set := range core.AddressSets {
		for _, f := range set {
			sets[i] = append(sets[i], f.String())
		}
	}
	writeJSON(w, fieldsResponse{
		Labels:       core.Labels(),
		AddressSets:  sets,
		RequiredName: core.FieldName.String(),
	})
}

// handleValidateMapping checks labels without touching any source.
func (s *Server) handleValidateMapping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Labels core.ColumnMapping `json:"labels"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	cleaned, err := core.ValidateMapping(req.Labels)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"valid":   true,
		"cleaned": cleaned,
	})
}
