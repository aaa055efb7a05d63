package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger é implementado por dependências que sabem verificar a própria saúde.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responde 200 quando o key-value store está acessível.
func HealthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
