// Package auth disponibiliza hash de senhas e tokens de sessão assinados.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

const userIDClaim = "userId"

// SessionManager assina tokens HS256 com o segredo da aplicação.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.SessionManager = (*SessionManager)(nil)

func NewSessionManager(secret string, ttl time.Duration) (*SessionManager, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("session secret must have at least 16 characters")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (m *SessionManager) Issue(userID uuid.UUID) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	token, err := jwt.NewBuilder().
		IssuedAt(issuedAt).
		Expiration(expiresAt).
		Claim(userIDClaim, userID.String()).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, m.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return string(signed), expiresAt, nil
}

func (m *SessionManager) Verify(raw string) (uuid.UUID, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, m.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claim, ok := token.Get(userIDClaim)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing %s claim", domain.ErrUnauthorized, userIDClaim)
	}
	value, ok := claim.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: malformed %s claim", domain.ErrUnauthorized, userIDClaim)
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return userID, nil
}

// BcryptHasher implementa ports.PasswordHasher.
type BcryptHasher struct {
	Cost int
}

var _ ports.PasswordHasher = BcryptHasher{}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = 10
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	return err
}
