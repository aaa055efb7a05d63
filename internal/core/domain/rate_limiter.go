// Package domain concentra entidades e estruturas centrais do Heritage AI.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Action identifica o tipo de operação sujeita a rate limiting.
type Action string

const (
	ActionRegister Action = "register"
	ActionLogin    Action = "login"
	ActionChat     Action = "chat"
)

// UnknownIdentity é o bucket compartilhado por clientes sem cabeçalho de endereço.
const UnknownIdentity = "unknown"

func (a Action) Valid() bool {
	switch a {
	case ActionRegister, ActionLogin, ActionChat:
		return true
	default:
		return false
	}
}

type RateLimitRule struct {
	Requests int
	Window   time.Duration
}

func (r RateLimitRule) Validate() error {
	if r.Requests < 1 {
		return fmt.Errorf("requests must be at least 1, got %d", r.Requests)
	}
	if r.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", r.Window)
	}
	return nil
}

type RateLimitRequest struct {
	Identity string
	Action   Action
}

type Decision struct {
	Allowed      bool
	Identifier   string
	Action       Action
	AppliedRule  RateLimitRule
	CurrentCount int64
}

// Identity normaliza o valor bruto do cabeçalho de endereço do cliente.
// Apenas o primeiro item de uma cadeia de proxies é considerado.
func Identity(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return UnknownIdentity
	}
	return first
}
