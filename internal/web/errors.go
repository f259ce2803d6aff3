package web

// errors.go provides unified error response handling for the API.
//
// Every failure is logged with the request ID and answered with an
// ErrorResponse. The message and action come from core.MapError; the status
// code comes from statusFor, which inspects the error chain.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/logging"
	"github.com/JonMunkholm/graticard/internal/output"
	"github.com/JonMunkholm/graticard/internal/pipeline"
	"github.com/JonMunkholm/graticard/internal/source"
	"github.com/JonMunkholm/graticard/internal/store"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	// Detail is the technical error text, set only for mapped errors such
	// as mapping validation failures.
	Detail string `json:"detail,omitempty"`
}

// respondError logs err and writes a JSON error with a status derived from it.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)
	if errors.Is(err, errBadRequest) {
		// Decoder text may contain unrelated patterns such as "unknown field".
		userMsg = core.MapError(errBadRequest)
	}

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if core.IsUserFacing(err) {
		resp.Detail = err.Error()
	}
	writeJSONStatus(w, status, resp)
}

// respondStatus writes an error that did not come from a Go error value.
func respondStatus(w http.ResponseWriter, status int, message, code string) {
	writeJSONStatus(w, status, ErrorResponse{
		Error:   message,
		Message: message,
		Code:    code,
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		unsupported *source.UnsupportedSourceError
		unreadable  *source.UnreadableSourceError
	)

	switch {
	case errors.Is(err, pipeline.ErrSessionNotFound),
		errors.Is(err, pipeline.ErrSourceNotFound),
		errors.Is(err, store.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrParseFirst),
		errors.Is(err, pipeline.ErrAlreadyParsed),
		errors.Is(err, pipeline.ErrNoMergeResult),
		errors.Is(err, store.ErrTemplateExists):
		return http.StatusConflict
	case errors.Is(err, source.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrInvalidMapping),
		errors.Is(err, store.ErrTemplateName),
		errors.Is(err, pipeline.ErrRowOutOfRange),
		errors.Is(err, source.ErrEmptySource),
		errors.As(err, &unreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, output.ErrNoDestination),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondErrorLogOnly logs an error that occurred after the response started.
func respondErrorLogOnly(r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("response aborted",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err.Error(),
	)
}
