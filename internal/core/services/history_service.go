package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

// HistoryService guarda a janela de conversa de cada identidade no key-value store.
//
// Save sobrescreve a sequência inteira. Duas requisições simultâneas da mesma
// identidade podem perder uma atualização (last-write-wins).
type HistoryService struct {
	storage ports.Storage
	ttl     time.Duration
	timeout time.Duration
}

var _ ports.HistoryStore = (*HistoryService)(nil)

func NewHistoryService(storage ports.Storage, ttl, timeout time.Duration) (*HistoryService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if ttl <= 0 {
		ttl = domain.HistoryTTL
	}
	return &HistoryService{storage: storage, ttl: ttl, timeout: timeout}, nil
}

// Get devolve a história salva ou uma sequência vazia quando não existe ou expirou.
func (s *HistoryService) Get(ctx context.Context, identity string) (domain.History, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, ok, err := s.storage.Get(ctx, historyKey(identity))
	if err != nil {
		return domain.History{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !ok || raw == "" {
		return domain.History{}, nil
	}

	var history domain.History
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return domain.History{}, fmt.Errorf("decode history for %s: %w", identity, err)
	}
	return history, nil
}

// Save grava a sequência já aparada e renova o TTL.
func (s *HistoryService) Save(ctx context.Context, identity string, history domain.History) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history for %s: %w", identity, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.storage.Set(ctx, historyKey(identity), string(payload), s.ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *HistoryService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func historyKey(identity string) string {
	return "chat_history:" + domain.Identity(identity)
}
