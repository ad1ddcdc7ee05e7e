package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sounditout/backend/application/service"
	"github.com/sounditout/backend/domain/plan"
	"github.com/sounditout/backend/domain/report"
)

// ErrBadRequest marks a malformed or invalid client request.
var ErrBadRequest = errors.New("bad request")

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps an error to its HTTP status and writes a JSON error body.
//
// The mapping separates "you asked for something that doesn't exist" (404)
// from "your request was malformed" (400), "the model produced unusable
// output" (422, client-correctable by re-issuing the operation) and "the AI
// pipeline failed" (502), so the front end can tell retry-worthy failures
// from the rest.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, report.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, plan.ErrInvalidTasks):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrEmbedding),
		errors.Is(err, service.ErrRetrieval),
		errors.Is(err, service.ErrGeneration):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	WriteJSON(w, status, map[string]string{"error": err.Error()})
}
