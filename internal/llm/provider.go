package llm

import (
	"fmt"
	"net/http"
	"sort"
)

// Binding describes what differs between providers: where the credential
// lives and which defaults apply. The call shape lives in each Client.
type Binding struct {
	Name          string
	CredentialEnv string
	DefaultURL    string
	DefaultModel  string
}

var bindings = map[string]Binding{
	"groq": {
		Name:          "groq",
		CredentialEnv: "GROQ_API_KEY",
		DefaultURL:    defaultGroqBaseURL,
		DefaultModel:  "llama3-70b-8192",
	},
	"openai": {
		Name:          "openai",
		CredentialEnv: "OPENAI_API_KEY",
		DefaultURL:    defaultOpenAIBaseURL,
		DefaultModel:  "gpt-4o-mini",
	},
	"anthropic": {
		Name:          "anthropic",
		CredentialEnv: "ANTHROPIC_API_KEY",
		DefaultURL:    defaultAnthropicBaseURL,
		DefaultModel:  "claude-3-5-haiku-latest",
	},
	"gemini": {
		Name:          "gemini",
		CredentialEnv: "GEMINI_API_KEY",
		DefaultURL:    defaultGeminiBaseURL,
		DefaultModel:  "gemini-1.5-flash",
	},
	"huggingface": {
		Name:          "huggingface",
		CredentialEnv: "HF_API_TOKEN",
		DefaultURL:    defaultHuggingFaceBaseURL,
		DefaultModel:  "mistralai/Mistral-7B-Instruct-v0.3",
	},
}

// Lookup returns the binding registered under name.
func Lookup(name string) (Binding, bool) {
	b, ok := bindings[name]
	return b, ok
}

// Names lists registered bindings in a stable order.
func Names() []string {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Settings struct {
	Type       string
	URL        string
	Model      string
	Token      string
	HTTPClient *http.Client
}

// New builds the Client for settings.Type, filling URL and model defaults
// from the binding.
func New(s Settings) (Client, error) {
	b, ok := Lookup(s.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported llm.type: %s", s.Type)
	}
	url := resolve(s.URL, b.DefaultURL)
	model := resolve(s.Model, b.DefaultModel)
	switch b.Name {
	case "groq", "openai":
		return NewOpenAIClient(OpenAIConfig{
			Provider:   b.Name,
			BaseURL:    url,
			Token:      s.Token,
			Model:      model,
			HTTPClient: s.HTTPClient,
		})
	case "anthropic":
		return NewAnthropicClient(AnthropicConfig{
			BaseURL:    url,
			Token:      s.Token,
			Model:      model,
			HTTPClient: s.HTTPClient,
		})
	case "gemini":
		return NewGeminiClient(GeminiConfig{
			BaseURL:    url,
			Token:      s.Token,
			Model:      model,
			HTTPClient: s.HTTPClient,
		})
	default:
		return NewHuggingFaceClient(HuggingFaceConfig{
			BaseURL:    url,
			Token:      s.Token,
			Model:      model,
			HTTPClient: s.HTTPClient,
		})
	}
}
