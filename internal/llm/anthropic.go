package llm

import (
	"context"
	"net/http"
	"strings"
)

const (
	defaultAnthropicBaseURL   = "https://api.anthropic.com"
	defaultAnthropicVersion   = "2023-06-01"
	defaultAnthropicMaxTokens = 1024
)

type AnthropicConfig struct {
	BaseURL    string
	Token      string
	Model      string
	Version    string
	HTTPClient *http.Client
}

// AnthropicClient calls the Messages API. max_tokens is mandatory there, so
// requests without one use defaultAnthropicMaxTokens.
type AnthropicClient struct {
	restBase
	version string
}

func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	base, err := newRESTBase("anthropic", cfg.BaseURL, cfg.Token, cfg.Model, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &AnthropicClient{
		restBase: base,
		version:  resolve(cfg.Version, defaultAnthropicVersion),
	}, nil
}

func (c *AnthropicClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	turns, system := splitSystem(req.Messages)
	payload := anthropicMessagesRequest{
		Model:     resolve(req.Model, c.model),
		System:    system,
		Messages:  turns,
		MaxTokens: req.MaxTokens,
	}
	if payload.MaxTokens <= 0 {
		payload.MaxTokens = defaultAnthropicMaxTokens
	}
	if req.Temperature > 0 {
		payload.Temperature = &req.Temperature
	}

	header := http.Header{}
	header.Set("x-api-key", c.token)
	header.Set("anthropic-version", c.version)

	var out anthropicMessagesResponse
	if err := c.postJSON(ctx, anthropicMessagesURL(c.baseURL), header, payload, &out, nestedMessage); err != nil {
		return ChatResponse{}, err
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return ChatResponse{
		Content:      text.String(),
		Model:        out.Model,
		FinishReason: out.StopReason,
	}, nil
}

func anthropicMessagesURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base + "/messages"
}

type anthropicMessagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type anthropicMessagesResponse struct {
	Model      string           `json:"model"`
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
