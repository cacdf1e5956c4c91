package handler

// Every endpoint answers with JSON. The run endpoints always use RunResponse, even on
// failure, so a client can show the diagnostic next to the code it sent. The snippet
// CRUD endpoints use ErrorResponse:
//
//	{"error": "not_found", "message": "snippet not found with id abc123"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/code-runner/internal/apperror"
)

// ErrorResponse is the error body of the snippet endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// RunResponse is the body of every run endpoint, success or failure.
type RunResponse struct {
	OutputCode string `json:"output_code"`
	OutputRun  string `json:"output_run"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and an ErrorResponse.
// Errors that are not *apperror.AppError never leak their text to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, ErrorResponse{
		Error:   apperror.Kind(err),
		Message: appErr.Message,
	})
}

// writeRunResult answers a run request. Any execution failure is a 400 whose
// output_run is the diagnostic text.
func writeRunResult(w http.ResponseWriter, code, stdout string, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, RunResponse{OutputCode: code, OutputRun: stdout})
		return
	}

	msg := "An internal error occurred"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	writeJSON(w, http.StatusBadRequest, RunResponse{OutputCode: code, OutputRun: msg})
}
