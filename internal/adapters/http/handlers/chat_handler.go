package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aryan55254/Heritage/internal/adapters/http/middleware"
	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/services"
)

// Chatter é o orquestrador de chat visto pelo handler.
type Chatter interface {
	Chat(ctx context.Context, identity, prompt string) (string, error)
}

type chatRequest struct {
	Prompt string `json:"prompt" schema:"prompt"`
}

type ChatHandler struct {
	chat   Chatter
	logger *slog.Logger
}

func NewChatHandler(chat Chatter, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[chatRequest](r)
	if err != nil {
		h.logger.Debug("invalid chat request", "error", err)
		writeJSON(w, http.StatusBadRequest, domain.ChatResult{Success: false, Message: domain.MsgInvalidPrompt})
		return
	}

	reply, err := h.chat.Chat(r.Context(), middleware.IdentityFrom(r.Context()), req.Prompt)
	if err != nil {
		writeJSON(w, chatStatus(err), domain.ChatResult{Success: false, Message: services.ChatFailureMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, domain.ChatResult{Success: true, Message: reply})
}

func chatStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidPrompt):
		return http.StatusBadRequest
	case domain.IsRateLimitedError(err):
		return http.StatusTooManyRequests
	case domain.IsStoreUnavailableError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
