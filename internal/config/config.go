// Package config centraliza o carregamento de configurações da aplicação.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aryan55254/Heritage/internal/core/domain"
)

// DefaultSystemPrompt é a instrução de sistema usada quando nenhuma outra é configurada.
const DefaultSystemPrompt = `You are Heritage AI, an AI scholar specializing exclusively in Indian History, Culture, and Heritage.

YOUR RULES:
1. **Scope:** ONLY answer questions related to Indian history (Ancient, Medieval, Modern), mythology, monuments, or culture.
2. **Off-topic:** If a user asks about anything else (e.g., coding, math, world politics), politely refuse: "I can only guide you through Indian history. Please ask about that."
3. **Conciseness:** Keep answers under 200 words unless asked for detail. Use bullet points for readability.
4. **Short Interactions:** If the user replies with simple one-word answers like "Yes", "No", "Okay", or "Thanks", DO NOT give a history lesson. Just reply with "Noted.", "You're welcome.", or "Let me know if you have other questions."
5. **Tone:** Be objective, respectful, and educational.`

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	RateLimiter RateLimiterConfig
	LLM         LLMConfig
	Database    DatabaseConfig
	Session     SessionConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port               string   `env:"SERVER_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	MetricsEnabled     bool     `env:"METRICS_ENABLED" envDefault:"true"`
}

type StorageConfig struct {
	Type    string        `env:"STORAGE_TYPE" envDefault:"redis"`
	Timeout time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`
	Redis   RedisConfig
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RateLimiterConfig struct {
	RegisterRequests      int  `env:"RATE_LIMIT_REGISTER_REQUESTS" envDefault:"3"`
	RegisterWindowSeconds int  `env:"RATE_LIMIT_REGISTER_WINDOW_SECONDS" envDefault:"3600"`
	LoginRequests         int  `env:"RATE_LIMIT_LOGIN_REQUESTS" envDefault:"5"`
	LoginWindowSeconds    int  `env:"RATE_LIMIT_LOGIN_WINDOW_SECONDS" envDefault:"300"`
	ChatRequests          int  `env:"RATE_LIMIT_CHAT_REQUESTS" envDefault:"10"`
	ChatWindowSeconds     int  `env:"RATE_LIMIT_CHAT_WINDOW_SECONDS" envDefault:"60"`
	FailOpen              bool `env:"RATE_LIMIT_FAIL_OPEN" envDefault:"false"`
}

type LLMConfig struct {
	APIKey           string        `env:"GROQ_API_KEY"`
	BaseURL          string        `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	Model            string        `env:"LLM_MODEL" envDefault:"llama-3.1-8b-instant"`
	Temperature      float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxTokens        int           `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	Timeout          time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	SystemPrompt     string        `env:"SYSTEM_PROMPT"`
	SystemPromptPath string        `env:"SYSTEM_PROMPT_PATH"`
}

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"heritage.db"`
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SecureCookie bool          `env:"SESSION_SECURE_COOKIE" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load lê o .env (quando existir), as variáveis de ambiente e valida o resultado.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse lê apenas as variáveis de ambiente do processo.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	prompt, err := resolveSystemPrompt(cfg.LLM)
	if err != nil {
		return Config{}, err
	}
	cfg.LLM.SystemPrompt = prompt

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Type {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER: %s", c.Database.Driver)
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	for action, rule := range c.RateLimiter.Rules() {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("invalid rate limit for %s: %w", action, err)
		}
	}
	return nil
}

// Rules converte a configuração em uma regra por ação.
func (c RateLimiterConfig) Rules() map[domain.Action]domain.RateLimitRule {
	return map[domain.Action]domain.RateLimitRule{
		domain.ActionRegister: {
			Requests: c.RegisterRequests,
			Window:   time.Duration(c.RegisterWindowSeconds) * time.Second,
		},
		domain.ActionLogin: {
			Requests: c.LoginRequests,
			Window:   time.Duration(c.LoginWindowSeconds) * time.Second,
		},
		domain.ActionChat: {
			Requests: c.ChatRequests,
			Window:   time.Duration(c.ChatWindowSeconds) * time.Second,
		},
	}
}

// RedisAddr monta o endereço host:port do Redis.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel traduz LOG_LEVEL; valores desconhecidos caem em info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func resolveSystemPrompt(cfg LLMConfig) (string, error) {
	if strings.TrimSpace(cfg.SystemPrompt) != "" {
		return cfg.SystemPrompt, nil
	}
	if path := strings.TrimSpace(cfg.SystemPromptPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read SYSTEM_PROMPT_PATH: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("system prompt file %s is empty", path)
		}
		return string(data), nil
	}
	return DefaultSystemPrompt, nil
}
