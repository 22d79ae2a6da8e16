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

// ExecutionHandler covers the execution log and the per-user analytics
// derived from it.
type ExecutionHandler struct {
	executions *service.ExecutionService
	stats      *service.StatsService
	users      *service.UserService
	logger     *slog.Logger
}

// NewExecutionHandler creates a new ExecutionHandler.
func NewExecutionHandler(
	executions *service.ExecutionService,
	stats *service.StatsService,
	users *service.UserService,
	logger *slog.Logger,
) *ExecutionHandler {
	return &ExecutionHandler{
		executions: executions,
		stats:      stats,
		users:      users,
		logger:     logger,
	}
}

type saveExecutionRequest struct {
	Language string  `json:"language"`
	Code     string  `json:"code"`
	Output   *string `json:"output,omitempty"`
	Error    *string `json:"error,omitempty"`
}

// HandleSave records a finished run for the authenticated user.
//
// HTTP: POST /api/executions
// The client runs the code itself and reports what happened; output and
// error are each optional and independent.
func (h *ExecutionHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	var req saveExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	exec, err := h.executions.Save(r.Context(), userID, req.Language, req.Code, req.Output, req.Error)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, exec)
}

// HandleList returns a page of a user's execution history, newest first.
//
// HTTP: GET /api/users/{userID}/executions?cursor=...&limit=...
// Pass the previous response's nextCursor to fetch the next page; a null
// nextCursor means the history is exhausted.
func (h *ExecutionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, apperror.ValidationFailed("limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}

	page, err := h.executions.ListByUser(r.Context(), userID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleStats returns the aggregated usage summary for a user.
//
// HTTP: GET /api/users/{userID}/stats
func (h *ExecutionHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	summary, err := h.stats.Summarize(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandleGetUser returns a user's profile by external identity.
//
// HTTP: GET /api/users/{userID}
func (h *ExecutionHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	user, err := h.users.GetByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
