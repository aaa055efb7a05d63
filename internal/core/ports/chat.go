package ports

import (
	"context"
	"time"

	"github.com/aryan55254/Heritage/internal/core/domain"
)

// HistoryStore persiste a janela deslizante de turnos por identidade.
type HistoryStore interface {
	Get(ctx context.Context, identity string) (domain.History, error)
	Save(ctx context.Context, identity string, history domain.History) error
}

// Completer é a API de completions consumida pelo orquestrador.
type Completer interface {
	Complete(ctx context.Context, turns []domain.Turn) (domain.Completion, error)
}

// Metrics recebe eventos do núcleo para observabilidade.
type Metrics interface {
	ObserveRateLimit(action domain.Action, allowed bool)
	ObserveCompletion(duration time.Duration, err error)
	ObserveStoreError(operation string)
}

type NopMetrics struct{}

func (NopMetrics) ObserveRateLimit(domain.Action, bool)   {}
func (NopMetrics) ObserveCompletion(time.Duration, error) {}
func (NopMetrics) ObserveStoreError(string)               {}
