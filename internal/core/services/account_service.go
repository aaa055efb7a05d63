package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Session é o token emitido após cadastro ou login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AccountService implementa cadastro, login e manutenção de perfil.
// Cadastro e login passam pelo rate limiter antes de tocar no repositório.
type AccountService struct {
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	sessions ports.SessionManager
	limiter  ports.RateLimiter
	logger   *slog.Logger
}

func NewAccountService(repo ports.AccountRepository, hasher ports.PasswordHasher, sessions ports.SessionManager, limiter ports.RateLimiter, logger *slog.Logger) (*AccountService, error) {
	if repo == nil || hasher == nil || sessions == nil || limiter == nil {
		return nil, fmt.Errorf("repository, hasher, session manager and limiter are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{repo: repo, hasher: hasher, sessions: sessions, limiter: limiter, logger: logger}, nil
}

func (s *AccountService) Register(ctx context.Context, identity, name, email, password string) (Session, error) {
	if _, err := s.limiter.Allow(ctx, domain.RateLimitRequest{Identity: identity, Action: domain.ActionRegister}); err != nil {
		return Session{}, err
	}

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return Session{}, domain.ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return Session{}, domain.ErrInvalidEmail
	}
	if len(password) < domain.MinPasswordLength {
		return Session{}, domain.ErrWeakPassword
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return Session{}, domain.ErrEmailExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: hash}
	if err := s.repo.Create(ctx, user); err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issue(user.ID)
}

func (s *AccountService) Login(ctx context.Context, identity, email, password string) (Session, error) {
	if _, err := s.limiter.Allow(ctx, domain.RateLimitRequest{Identity: identity, Action: domain.ActionLogin}); err != nil {
		return Session{}, err
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// UpdateProfile troca o nome e, se informada, a senha do usuário.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if strings.TrimSpace(newPassword) != "" {
		if len(newPassword) < domain.MinPasswordLength {
			return domain.ErrWeakPassword
		}
		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *AccountService) issue(userID uuid.UUID) (Session, error) {
	token, expiresAt, err := s.sessions.Issue(userID)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
