package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aryan55254/Heritage/internal/adapters/http/middleware"
	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/services"
)

// Accounts é o serviço de contas visto pelos handlers.
type Accounts interface {
	Register(ctx context.Context, identity, name, email, password string) (services.Session, error)
	Login(ctx context.Context, identity, email, password string) (services.Session, error)
	Profile(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, newPassword string) error
}

type registerRequest struct {
	Name     string `json:"name" schema:"name"`
	Email    string `json:"email" schema:"email"`
	Password string `json:"password" schema:"password"`
}

type loginRequest struct {
	Email    string `json:"email" schema:"email"`
	Password string `json:"password" schema:"password"`
}

type updateProfileRequest struct {
	Name        string `json:"name" schema:"name"`
	NewPassword string `json:"newPassword" schema:"newPassword"`
}

type profileResponse struct {
	Success bool           `json:"success"`
	User    domain.Profile `json:"user"`
}

type AccountHandler struct {
	accounts     Accounts
	secureCookie bool
	logger       *slog.Logger
}

func NewAccountHandler(accounts Accounts, secureCookie bool, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, secureCookie: secureCookie, logger: logger}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[registerRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, fail(domain.MsgAllFieldsRequired))
		return
	}

	session, err := h.accounts.Register(r.Context(), middleware.IdentityFrom(r.Context()), req.Name, req.Email, req.Password)
	if err != nil {
		status, msg := registerFailure(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("registration failed", "error", err)
		}
		writeJSON(w, status, fail(msg))
		return
	}

	h.setSession(w, session)
	writeJSON(w, http.StatusOK, domain.ActionResult{Success: true})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[loginRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, fail(domain.MsgInvalidCredentials))
		return
	}

	session, err := h.accounts.Login(r.Context(), middleware.IdentityFrom(r.Context()), req.Email, req.Password)
	if err != nil {
		status, msg := loginFailure(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("login failed", "error", err)
		}
		writeJSON(w, status, fail(msg))
		return
	}

	h.setSession(w, session)
	writeJSON(w, http.StatusOK, domain.ActionResult{Success: true})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, domain.ActionResult{Success: true})
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, fail(domain.MsgUnauthorized))
		return
	}

	profile, err := h.accounts.Profile(r.Context(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		writeJSON(w, http.StatusUnauthorized, fail(domain.MsgUnauthorized))
		return
	}
	if err != nil {
		h.logger.Error("failed to load profile", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, fail(domain.MsgUpdateFailed))
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Success: true, User: profile})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, fail(domain.MsgUnauthorized))
		return
	}

	req, err := decodeRequest[updateProfileRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, fail(domain.MsgUpdateFailed))
		return
	}

	err = h.accounts.UpdateProfile(r.Context(), userID, req.Name, req.NewPassword)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, domain.ActionResult{Success: true, Message: domain.MsgProfileUpdated})
	case errors.Is(err, domain.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, fail(domain.MsgWeakPassword))
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusUnauthorized, fail(domain.MsgUnauthorized))
	default:
		h.logger.Error("update error", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, fail(domain.MsgUpdateFailed))
	}
}

func (h *AccountHandler) setSession(w http.ResponseWriter, session services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func fail(msg string) domain.ActionResult {
	return domain.ActionResult{Success: false, Error: msg}
}

func registerFailure(err error) (int, string) {
	switch {
	case domain.IsRateLimitedError(err):
		return http.StatusTooManyRequests, domain.MsgTooManyRegisters
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, domain.MsgAllFieldsRequired
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, domain.MsgInvalidEmail
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, domain.MsgWeakPassword
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusConflict, domain.MsgEmailExists
	default:
		return http.StatusInternalServerError, domain.MsgRegistrationFailed
	}
}

func loginFailure(err error) (int, string) {
	switch {
	case domain.IsRateLimitedError(err):
		return http.StatusTooManyRequests, domain.MsgTooManyLogins
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.MsgInvalidCredentials
	default:
		return http.StatusInternalServerError, domain.MsgLoginFailed
	}
}
