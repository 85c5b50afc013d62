package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co"

type HuggingFaceConfig struct {
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

// HuggingFaceClient talks to the text-generation task of the Inference API.
// The API takes a single input string, so the chat is flattened.
type HuggingFaceClient struct {
	restBase
}

func NewHuggingFaceClient(cfg HuggingFaceConfig) (*HuggingFaceClient, error) {
	base, err := newRESTBase("huggingface", cfg.BaseURL, cfg.Token, cfg.Model, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &HuggingFaceClient{restBase: base}, nil
}

func (c *HuggingFaceClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	model := resolve(req.Model, c.model)
	payload := huggingFaceRequest{
		Inputs: flattenMessages(req.Messages),
		Parameters: huggingFaceParameters{
			MaxNewTokens:   req.MaxTokens,
			ReturnFullText: false,
		},
		Options: huggingFaceOptions{WaitForModel: true},
	}
	if req.Temperature > 0 {
		payload.Parameters.Temperature = &req.Temperature
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	var generations []huggingFaceGeneration
	if err := c.postJSON(ctx, huggingFaceModelURL(c.baseURL, model), header, payload, &generations, flatMessage); err != nil {
		return ChatResponse{}, err
	}
	if len(generations) == 0 {
		return ChatResponse{}, providerErr("huggingface", "response has no generations", nil)
	}
	return ChatResponse{
		Content: generations[0].GeneratedText,
		Model:   model,
	}, nil
}

func huggingFaceModelURL(baseURL, model string) string {
	parts := strings.Split(model, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(baseURL, "/") + "/models/" + strings.Join(parts, "/")
}

func flattenMessages(messages []Message) string {
	contents := make([]string, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, m.Content)
	}
	return strings.Join(contents, "\n\n")
}

// flatMessage reads {"error":"..."}.
func flatMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Error
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
	Options    huggingFaceOptions    `json:"options"`
}

type huggingFaceParameters struct {
	MaxNewTokens   int      `json:"max_new_tokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	ReturnFullText bool     `json:"return_full_text"`
}

type huggingFaceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type huggingFaceGeneration struct {
	GeneratedText string `json:"generated_text"`
}
