package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

// Config agrega os limites utilizados pelo serviço de rate limiting.
type Config struct {
	Rules map[domain.Action]domain.RateLimitRule
	// FailOpen libera a requisição quando o store está indisponível.
	FailOpen     bool
	StoreTimeout time.Duration
}

// RateLimiterService implementa a janela fixa compartilhada via key-value store.
type RateLimiterService struct {
	storage ports.Storage
	config  Config
	logger  *slog.Logger
	metrics ports.Metrics
}

var _ ports.RateLimiter = (*RateLimiterService)(nil)

// NewRateLimiterService cria uma nova instância do serviço.
func NewRateLimiterService(storage ports.Storage, cfg Config, logger *slog.Logger, metrics ports.Metrics) (*RateLimiterService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	for action, rule := range cfg.Rules {
		if !action.Valid() {
			return nil, fmt.Errorf("unknown action %q", action)
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rule for %s: %w", action, err)
		}
	}
	if cfg.Rules == nil {
		cfg.Rules = make(map[domain.Action]domain.RateLimitRule)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	return &RateLimiterService{storage: storage, config: cfg, logger: logger, metrics: metrics}, nil
}

// Allow avalia a requisição com a regra configurada para a ação.
func (s *RateLimiterService) Allow(ctx context.Context, req domain.RateLimitRequest) (domain.Decision, error) {
	rule, ok := s.config.Rules[req.Action]
	if !ok {
		return domain.Decision{}, fmt.Errorf("no rate limit rule configured for action %q", req.Action)
	}
	return s.Check(ctx, req.Identity, req.Action, rule)
}

// Check conta a ação na janela atual e informa se o limite foi ultrapassado.
// A janela é ancorada na primeira requisição e expira inteira ao fim do TTL.
func (s *RateLimiterService) Check(ctx context.Context, identity string, action domain.Action, rule domain.RateLimitRule) (domain.Decision, error) {
	identifier := domain.Identity(identity)
	decision := domain.Decision{Identifier: identifier, Action: action, AppliedRule: rule}

	count, err := s.count(ctx, buildKey(action, identifier), rule.Window)
	if err != nil {
		s.metrics.ObserveStoreError("ratelimit")
		if s.config.FailOpen {
			s.logger.Warn("rate limit store unavailable, allowing request",
				"action", action, "identity", identifier, "error", err)
			decision.Allowed = true
			return decision, nil
		}
		s.logger.Error("rate limit store unavailable, denying request",
			"action", action, "identity", identifier, "error", err)
		return decision, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	decision.CurrentCount = count
	decision.Allowed = count <= int64(rule.Requests)
	s.metrics.ObserveRateLimit(action, decision.Allowed)

	if !decision.Allowed {
		s.logger.Info("rate limit exceeded",
			"action", action, "identity", identifier, "count", count, "limit", rule.Requests)
		return decision, domain.ErrRateLimited
	}

	s.logger.Debug("rate limit check passed",
		"action", action, "identity", identifier, "count", count, "limit", rule.Requests)
	return decision, nil
}

func (s *RateLimiterService) count(ctx context.Context, key string, window time.Duration) (int64, error) {
	if s.config.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.StoreTimeout)
		defer cancel()
	}

	created, err := s.storage.SetNX(ctx, key, "1", window)
	if err != nil {
		return 0, err
	}
	if created {
		return 1, nil
	}
	return s.storage.Increment(ctx, key, window)
}

func buildKey(action domain.Action, identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s", action, strings.ToLower(identifier))
}
