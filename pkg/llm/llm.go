// Package llm wraps the text completion providers behind one interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/openai"
)

// ErrNotConfigured is returned when the provider has no credentials.
var ErrNotConfigured = errors.New("completion provider is not configured")

// Completer turns a prompt into a reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// AnthropicCompleter implements Completer using the Anthropic Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	enabled   bool
}

func NewAnthropicCompleter(apiKey, model string, maxTokens int64, opts ...option.RequestOption) *AnthropicCompleter {
	apiKey = strings.TrimSpace(apiKey)
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &AnthropicCompleter{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		enabled:   apiKey != "",
	}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", ErrNotConfigured
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}

// OpenAICompleter implements Completer using chat completions.
type OpenAICompleter struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

func NewOpenAICompleter(client *openai.Client, model string, maxTokens int64) *OpenAICompleter {
	return &OpenAICompleter{client: client, model: model, maxTokens: maxTokens}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	reply, err := c.client.Complete(ctx, c.model, prompt, c.maxTokens)
	if errors.Is(err, openai.ErrMissingAPIKey) {
		return "", fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}
	return reply, err
}

// New builds the completer named by cfg.Provider.
func New(cfg models.AskConfig, anthropicKey string, openaiClient *openai.Client) Completer {
	if cfg.Provider == "openai" {
		return NewOpenAICompleter(openaiClient, cfg.Model, cfg.MaxTokens)
	}
	var opts []option.RequestOption
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return NewAnthropicCompleter(anthropicKey, cfg.Model, cfg.MaxTokens, opts...)
}

// IsUnauthorized reports errors that will repeat for every request until
// the credentials change.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, openai.ErrMissingAPIKey) {
		return true
	}
	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		return oaErr.Unauthorized()
	}
	var anErr *anthropic.Error
	if errors.As(err, &anErr) {
		return anErr.StatusCode == http.StatusUnauthorized || anErr.StatusCode == http.StatusForbidden
	}
	return false
}
