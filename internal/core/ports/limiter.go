// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"

	"github.com/aryan55254/Heritage/internal/core/domain"
)

type RateLimiter interface {
	Allow(ctx context.Context, req domain.RateLimitRequest) (domain.Decision, error)
}
