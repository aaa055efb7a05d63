package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

// ChatConfig agrega os parâmetros do orquestrador de chat.
type ChatConfig struct {
	SystemPrompt      string
	CompletionTimeout time.Duration
}

// ChatService sequencia validação, rate limit, contexto, chamada ao modelo e commit.
type ChatService struct {
	limiter   ports.RateLimiter
	history   ports.HistoryStore
	completer ports.Completer
	config    ChatConfig
	logger    *slog.Logger
	metrics   ports.Metrics
}

func NewChatService(limiter ports.RateLimiter, history ports.HistoryStore, completer ports.Completer, cfg ChatConfig, logger *slog.Logger, metrics ports.Metrics) (*ChatService, error) {
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if history == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		return nil, fmt.Errorf("system prompt is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ChatService{
		limiter:   limiter,
		history:   history,
		completer: completer,
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// HandleChat nunca devolve erro: toda falha vira um ChatResult com Success=false.
func (s *ChatService) HandleChat(ctx context.Context, identity, prompt string) domain.ChatResult {
	reply, err := s.Chat(ctx, identity, prompt)
	if err != nil {
		return domain.ChatResult{Success: false, Message: ChatFailureMessage(err)}
	}
	return domain.ChatResult{Success: true, Message: reply}
}

// Chat executa um turno e devolve a resposta do modelo ou o erro de domínio.
func (s *ChatService) Chat(ctx context.Context, identity, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrInvalidPrompt
	}

	identity = domain.Identity(identity)
	logger := s.logger.With("identity", identity)

	if _, err := s.limiter.Allow(ctx, domain.RateLimitRequest{Identity: identity, Action: domain.ActionChat}); err != nil {
		return "", err
	}

	history, err := s.history.Get(ctx, identity)
	if err != nil {
		logger.Warn("history unavailable, continuing without context", "error", err)
		history = domain.History{}
	}

	userTurn := domain.Turn{Role: domain.RoleUser, Content: prompt}
	completion, err := s.complete(ctx, s.buildContext(history, userTurn))
	if err != nil {
		logger.Error("completion call failed", "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	reply := completion.Content
	if strings.TrimSpace(reply) == "" {
		reply = domain.MsgEmptyCompletion
	}

	updated := history.Append(userTurn, domain.Turn{Role: domain.RoleAssistant, Content: reply}).Trim(domain.MaxHistoryTurns)
	if err := s.history.Save(ctx, identity, updated); err != nil {
		logger.Error("failed to persist history", "error", err)
	}

	logger.Debug("chat turn completed",
		"model", completion.Model,
		"prompt_tokens", completion.PromptTokens,
		"completion_tokens", completion.CompletionTokens,
		"history_len", len(updated))
	return reply, nil
}

// buildContext monta [instrução de sistema] + história + turno atual.
func (s *ChatService) buildContext(history domain.History, userTurn domain.Turn) []domain.Turn {
	turns := make([]domain.Turn, 0, len(history)+2)
	turns = append(turns, domain.Turn{Role: domain.RoleSystem, Content: s.config.SystemPrompt})
	turns = append(turns, history...)
	return append(turns, userTurn)
}

func (s *ChatService) complete(ctx context.Context, turns []domain.Turn) (domain.Completion, error) {
	if s.config.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.CompletionTimeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := s.completer.Complete(ctx, turns)
	s.metrics.ObserveCompletion(time.Since(start), err)
	return completion, err
}

// ChatFailureMessage traduz um erro de Chat para a mensagem exibida ao usuário.
// A causa específica de falhas do store ou do modelo não é exposta.
func ChatFailureMessage(err error) string {
	switch {
	case domain.IsRateLimitedError(err):
		return domain.MsgChattingTooFast
	case errors.Is(err, domain.ErrInvalidPrompt):
		return domain.MsgInvalidPrompt
	default:
		return domain.MsgConnectionFailed
	}
}
