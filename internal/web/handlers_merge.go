package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/graticard/internal/output"
)

// handleMerge reconciles the parsed sources of the session. The body may
// override the configured confidence floor.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Floor *float64 `json:"floor"`
	}
	if err := decodeJSON(w, r, &req, true); err != nil {
		respondError(w, r, err)
		return
	}

	floor := s.cfg.Merge.ConfidenceFloor
	if req.Floor != nil {
		if *req.Floor < 0 || *req.Floor > 100 {
			respondError(w, r, badRequest("floor must be between 0 and 100, got %v", *req.Floor))
			return
		}
		floor = *req.Floor
	}

	result, err := sess.Merge(floor)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleExport streams the last merge result as the output CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := sess.Result()
	if err != nil {
		respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("merged_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := output.WriteCSV(w, result.Entities); err != nil {
		// Headers are already sent; the client sees a truncated file.
		respondErrorLogOnly(r, err)
	}
}
