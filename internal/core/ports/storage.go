// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"
	"time"
)

// Storage é o cliente do key-value store compartilhado entre requisições e processos.
// O TTL é aplicado pelo store, não pelo chamador.
type Storage interface {
	// SetNX grava value somente se key não existir.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// Increment incrementa atomicamente key. ttl só é aplicado quando a chave
	// não possui expiração, evitando contadores imortais.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
