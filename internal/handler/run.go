// Package handler contains the HTTP glue between chi routes and the service layer.
// Handlers parse the request, call one service method and write JSON; they hold no
// business rules of their own.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/code-runner/internal/executor"
	"github.com/sakif/code-runner/internal/language"
)

// Runner is the dispatcher the run endpoint calls.
type Runner interface {
	Run(ctx context.Context, tag, code string) (*executor.ExecutionResult, error)
}

// LanguageLister exposes the registered languages.
type LanguageLister interface {
	Entries() []language.Entry
}

// RunRequest is the body of POST /run/{language}.
type RunRequest struct {
	Code string `json:"code"`
}

// LanguageInfo describes one registry entry in GET /languages.
type LanguageInfo struct {
	Tag       string `json:"tag"`
	Mode      string `json:"mode"`
	Extension string `json:"extension"`
}

// LanguagesResponse is the body of GET /languages.
type LanguagesResponse struct {
	Languages []LanguageInfo `json:"languages"`
}

// RunHandler serves ad-hoc code execution.
type RunHandler struct {
	runs      Runner
	languages LanguageLister
	logger    *slog.Logger
}

func NewRunHandler(runs Runner, languages LanguageLister, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		runs:      runs,
		languages: languages,
		logger:    logger,
	}
}

// HandleRun executes the posted code in the language named by the path.
//
// HTTP: POST /run/{language}
// REQUEST BODY: {"code": "print('hi')"}
// RESPONSE: {"output_code": "print('hi')", "output_run": "hi\n"}
//
// The tag is matched case-sensitively. The code is echoed back whatever the outcome.
func (h *RunHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "language")

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid run request body",
			slog.String("language", tag),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadRequest, RunResponse{OutputRun: "invalid request body"})
		return
	}

	res, err := h.runs.Run(r.Context(), tag, req.Code)
	if err != nil {
		writeRunResult(w, req.Code, "", err)
		return
	}
	writeRunResult(w, req.Code, res.Stdout, nil)
}

// HandleLanguages lists the registry.
//
// HTTP: GET /languages
func (h *RunHandler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	entries := h.languages.Entries()
	resp := LanguagesResponse{Languages: make([]LanguageInfo, 0, len(entries))}
	for _, e := range entries {
		resp.Languages = append(resp.Languages, LanguageInfo{
			Tag:       e.Tag,
			Mode:      string(e.Strategy.Mode()),
			Extension: e.Extension,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth is the liveness probe.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
