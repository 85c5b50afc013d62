package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type GeminiConfig struct {
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

// GeminiClient calls generateContent. The system message travels as
// systemInstruction and assistant turns use the "model" role.
type GeminiClient struct {
	restBase
}

func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	base, err := newRESTBase("gemini", cfg.BaseURL, cfg.Token, cfg.Model, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{restBase: base}, nil
}

func (c *GeminiClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	target, err := geminiURL(c.baseURL, resolve(req.Model, c.model), c.token)
	if err != nil {
		return ChatResponse{}, providerErr("gemini", "build endpoint", err)
	}

	var out geminiResponse
	if err := c.postJSON(ctx, target, nil, newGeminiRequest(req), &out, nestedMessage); err != nil {
		return ChatResponse{}, err
	}
	if len(out.Candidates) == 0 {
		return ChatResponse{}, providerErr("gemini", "response has no candidates", nil)
	}

	first := out.Candidates[0]
	var text strings.Builder
	for _, part := range first.Content.Parts {
		text.WriteString(part.Text)
	}
	return ChatResponse{
		Content:      text.String(),
		Model:        out.ModelVersion,
		FinishReason: first.FinishReason,
	}, nil
}

func newGeminiRequest(req ChatRequest) geminiRequest {
	turns, system := splitSystem(req.Messages)
	out := geminiRequest{Contents: make([]geminiContent, 0, len(turns))}
	if system != "" {
		out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	for _, m := range turns {
		role := m.Role
		if role == RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		out.GenerationConfig = &geminiSampling{MaxOutputTokens: req.MaxTokens}
		if req.Temperature > 0 {
			out.GenerationConfig.Temperature = &req.Temperature
		}
	}
	return out
}

// geminiURL appends /v1beta unless the base already names an API version.
func geminiURL(baseURL, model, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	prefix := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(prefix, "/v1") && !strings.HasSuffix(prefix, "/v1beta") {
		prefix += "/v1beta"
	}
	u.Path = path.Join(prefix, "models", model+":generateContent")
	u.RawQuery = url.Values{"key": {token}}.Encode()
	return u.String(), nil
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiSampling `json:"generationConfig,omitempty"`
}

type geminiSampling struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}
