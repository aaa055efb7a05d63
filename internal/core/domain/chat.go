package domain

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// MaxHistoryTurns limita a janela deslizante a três pares usuário/assistente.
	MaxHistoryTurns = 6
	HistoryTTL      = 600 * time.Second
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History é a sequência cronológica de turnos de uma identidade.
type History []Turn

// Append devolve uma nova sequência com os turnos adicionados ao final.
func (h History) Append(turns ...Turn) History {
	out := make(History, 0, len(h)+len(turns))
	out = append(out, h...)
	return append(out, turns...)
}

// Trim mantém apenas as últimas max entradas, descartando as mais antigas.
func (h History) Trim(max int) History {
	if max <= 0 {
		return History{}
	}
	if len(h) <= max {
		return h
	}
	out := make(History, max)
	copy(out, h[len(h)-max:])
	return out
}

// Completion é a resposta do modelo para um contexto montado.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ChatResult é o formato devolvido ao chamador do chat.
type ChatResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ActionResult é o formato devolvido pelas ações de conta.
type ActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
