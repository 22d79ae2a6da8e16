package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/nhasan/codenest/internal/service"
)

// WebhookHandler receives identity-provider events and provisions local
// user rows from them. Events arrive signed in the svix format; anything
// that fails verification is rejected before the payload is even parsed.
type WebhookHandler struct {
	users  *service.UserService
	wh     *svix.Webhook
	logger *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler verifying against the given
// signing secret.
func NewWebhookHandler(users *service.UserService, secret string, logger *slog.Logger) (*WebhookHandler, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &WebhookHandler{users: users, wh: wh, logger: logger}, nil
}

type webhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type webhookUserData struct {
	ID             string `json:"id"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// HandleEvent processes a signed provider event.
//
// HTTP: POST /webhooks/clerk
// Any missing svix header or failed signature check is a 400. Unhandled
// event types still return 200 so the provider doesn't retry them.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{"svix-id", "svix-timestamp", "svix-signature"} {
		if r.Header.Get(name) == "" {
			http.Error(w, "missing svix headers", http.StatusBadRequest)
			return
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read body", http.StatusBadRequest)
		return
	}

	if err := h.wh.Verify(body, r.Header); err != nil {
		h.logger.Warn("webhook signature verification failed", slog.String("error", err.Error()))
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "user.created":
		if err := h.handleUserCreated(r, event.Data); err != nil {
			h.logger.Error("provisioning user from webhook failed", slog.String("error", err.Error()))
			http.Error(w, "could not provision user", http.StatusInternalServerError)
			return
		}
	default:
		h.logger.Info("ignoring webhook event", slog.String("type", event.Type))
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleUserCreated(r *http.Request, data json.RawMessage) error {
	var user webhookUserData
	if err := json.Unmarshal(data, &user); err != nil {
		return err
	}

	email := ""
	if len(user.EmailAddresses) > 0 {
		email = user.EmailAddresses[0].EmailAddress
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)

	return h.users.Sync(r.Context(), user.ID, email, name)
}
