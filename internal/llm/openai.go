package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultGroqBaseURL   = "https://api.groq.com/openai/v1"
)

// OpenAIConfig configures any OpenAI-compatible chat completions API.
// Provider only labels errors and logs ("openai", "groq").
type OpenAIConfig struct {
	Provider   string
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

type OpenAIClient struct {
	provider string
	model    string
	client   openai.Client
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" {
		provider = "openai"
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New(provider + " base url is required")
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New(provider + " token is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New(provider + " model is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(token),
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAIClient{
		provider: provider,
		model:    model,
		client:   openai.NewClient(opts...),
	}, nil
}

func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(resolve(req.Model, c.model)),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return ChatResponse{}, &ProviderError{
				Provider: c.provider,
				Status:   apiErr.StatusCode,
				Message:  apiErr.Message,
				Err:      err,
			}
		}
		return ChatResponse{}, &ProviderError{Provider: c.provider, Err: err}
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, providerErr(c.provider, "response has no choices", nil)
	}
	return ChatResponse{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
