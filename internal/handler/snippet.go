package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/auth"
	"github.com/nhasan/codenest/internal/service"
)

// SnippetHandler manages shared snippets, their stars, and their comments.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

// NewSnippetHandler creates a new SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

type createSnippetRequest struct {
	Title    string `json:"title"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

// HandleCreate shares a new snippet under the caller's name.
//
// HTTP: POST /api/snippets
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	var req createSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Create(r.Context(), userID, req.Title, req.Code, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleList returns shared snippets, newest first.
//
// HTTP: GET /api/snippets?limit=...&offset=...
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	snippets, err := h.snippets.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// HandleGet returns one snippet with its star count, the caller's star
// state (false for anonymous callers), and its comments.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	snippet, err := h.snippets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	starCount, err := h.snippets.StarCount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	starred := false
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		starred, err = h.snippets.IsStarred(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	comments, err := h.snippets.ListComments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snippet":   snippet,
		"starCount": starCount,
		"isStarred": starred,
		"comments":  comments,
	})
}

// HandleDelete removes a snippet. Only the owner may delete.
//
// HTTP: DELETE /api/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	if err := h.snippets.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleStar stars the snippet if the caller hasn't starred it,
// unstars it otherwise.
//
// HTTP: POST /api/snippets/{id}/star
func (h *SnippetHandler) HandleToggleStar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	id := r.PathValue("id")
	starred, err := h.snippets.ToggleStar(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.snippets.StarCount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"isStarred": starred,
		"starCount": count,
	})
}

// HandleStarState returns a snippet's star count and whether the caller has
// starred it (always false for anonymous callers).
//
// HTTP: GET /api/snippets/{id}/star
func (h *SnippetHandler) HandleStarState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	count, err := h.snippets.StarCount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	starred := false
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		starred, err = h.snippets.IsStarred(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"isStarred": starred,
		"starCount": count,
	})
}

// HandleListComments returns a snippet's comments, oldest first.
//
// HTTP: GET /api/snippets/{id}/comments
func (h *SnippetHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.snippets.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// HandleAddComment posts a comment on a snippet.
//
// HTTP: POST /api/snippets/{id}/comments
func (h *SnippetHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	comment, err := h.snippets.AddComment(r.Context(), userID, r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a non-negative integer")
	}
	return n, nil
}
