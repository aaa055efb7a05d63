// Package middleware disponibiliza middlewares HTTP específicos da aplicação.
package middleware

import (
	"context"
	"net/http"

	"github.com/aryan55254/Heritage/internal/core/domain"
)

type contextKey int

const (
	identityKey contextKey = iota
	userIDKey
)

// ForwardedForHeader é a dica de endereço enviada pelo proxy de borda.
const ForwardedForHeader = "X-Forwarded-For"

// NewIdentityMiddleware deriva a identidade do cliente e a coloca no contexto.
// Sem o cabeçalho, todas as requisições caem no bucket compartilhado "unknown".
func NewIdentityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := domain.Identity(r.Header.Get(ForwardedForHeader))
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom devolve a identidade gravada pelo middleware.
func IdentityFrom(ctx context.Context) string {
	if identity, ok := ctx.Value(identityKey).(string); ok && identity != "" {
		return identity
	}
	return domain.UnknownIdentity
}
