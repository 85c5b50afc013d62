package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type ChatResponse struct {
	Content      string
	Model        string
	FinishReason string
}

// Client is the one capability every provider binding implements.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// ProviderError reports a failed provider call. Status is zero when no HTTP
// response was received.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s request failed: %s (status %d)", e.Provider, e.Message, e.Status)
	case e.Status != 0:
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.Status)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s request: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerErr(provider, message string, err error) error {
	return &ProviderError{Provider: provider, Message: message, Err: err}
}

func splitSystem(messages []Message) ([]Message, string) {
	if len(messages) == 0 {
		return messages, ""
	}
	first := messages[0]
	if first.Role != RoleSystem {
		return messages, ""
	}
	return messages[1:], first.Content
}

func resolve(override, fallback string) string {
	if strings.TrimSpace(override) == "" {
		return fallback
	}
	return override
}
