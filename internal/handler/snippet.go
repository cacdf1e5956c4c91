package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/code-runner/internal/executor"
	"github.com/sakif/code-runner/internal/model"
)

// SnippetStore is the slice of service.SnippetService the snippet endpoints use.
type SnippetStore interface {
	Create(ctx context.Context, name, lang, code, description string) (*model.Snippet, error)
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, limit, offset int, lang string) ([]model.Snippet, error)
	Update(ctx context.Context, id, name, lang, code, description string) (*model.Snippet, error)
	Delete(ctx context.Context, id string) error
	Run(ctx context.Context, id string) (*model.Snippet, *executor.ExecutionResult, error)
}

// SnippetRequest is the body of POST /snippets and PUT /snippets/{id}.
type SnippetRequest struct {
	Name        string `json:"name"`
	Language    string `json:"language"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SnippetHandler manages the saved-snippet library.
type SnippetHandler struct {
	snippets SnippetStore
	logger   *slog.Logger
}

func NewSnippetHandler(snippets SnippetStore, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleList returns one page of snippets.
//
// HTTP: GET /snippets?limit=20&offset=0&language=python
// Unparseable limit/offset values fall back to the defaults.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	snippets, err := h.snippets.List(r.Context(), limit, offset, q.Get("language"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleCreate saves a new snippet.
//
// HTTP: POST /snippets
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req SnippetRequest
	if !h.decode(w, r, &req) {
		return
	}

	snippet, err := h.snippets.Create(r.Context(), req.Name, req.Language, req.Code, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HTTP: GET /snippets/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HTTP: PUT /snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req SnippetRequest
	if !h.decode(w, r, &req) {
		return
	}

	snippet, err := h.snippets.Update(r.Context(), chi.URLParam(r, "id"),
		req.Name, req.Language, req.Code, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HTTP: DELETE /snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.snippets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRun executes a stored snippet and answers like POST /run/{language}.
// A missing snippet is a 404 ErrorResponse, not a RunResponse: there is no code to echo.
//
// HTTP: POST /snippets/{id}/run
func (h *SnippetHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	snippet, res, err := h.snippets.Run(r.Context(), chi.URLParam(r, "id"))
	if snippet == nil {
		writeError(w, err)
		return
	}
	if err != nil {
		writeRunResult(w, snippet.Code, "", err)
		return
	}
	writeRunResult(w, snippet.Code, res.Stdout, nil)
}

func (h *SnippetHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid request body",
		})
		return false
	}
	return true
}
