// Package llm disponibiliza o cliente da API de completions compatível com OpenAI
// (Groq, OpenRouter ou a própria OpenAI).
package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

type Client struct {
	client *openai.Client
	config Config
}

var _ ports.Completer = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	oaCfg := openai.DefaultConfig(cfg.APIKey)
	oaCfg.BaseURL = cfg.BaseURL

	return &Client{client: openai.NewClientWithConfig(oaCfg), config: cfg}, nil
}

func (c *Client) Complete(ctx context.Context, turns []domain.Turn) (domain.Completion, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(t.Role), Content: t.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    msgs,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	out := domain.Completion{
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}
	return out, nil
}
