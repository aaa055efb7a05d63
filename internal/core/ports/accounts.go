package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aryan55254/Heritage/internal/core/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// SessionManager emite e verifica tokens de sessão.
type SessionManager interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
	Verify(token string) (uuid.UUID, error)
}
