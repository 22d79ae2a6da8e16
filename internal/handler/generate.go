package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/auth"
	"github.com/nhasan/codenest/internal/generate"
)

// GenerateHandler exposes AI code generation.
type GenerateHandler struct {
	client *generate.Client
	logger *slog.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(client *generate.Client, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{client: client, logger: logger}
}

type generateCodeRequest struct {
	Language string `json:"language"`
	Prompt   string `json:"prompt"`
}

type generateCodeResponse struct {
	Code string `json:"code"`
}

// HandleGenerate asks the model for code matching the caller's prompt.
//
// HTTP: POST /api/generate
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	var req generateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid generate JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	code, err := h.client.GenerateCode(r.Context(), req.Language, req.Prompt)
	if err != nil {
		h.logger.Error("code generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateCodeResponse{Code: code})
}
