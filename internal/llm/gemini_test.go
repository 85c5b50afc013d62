package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "token" {
			t.Fatalf("missing api key query")
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 2 || req.Contents[0].Role != RoleUser || req.Contents[1].Role != "model" {
			t.Fatalf("unexpected contents: %+v", req.Contents)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be brief" {
			t.Fatalf("unexpected system instruction: %+v", req.SystemInstruction)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.MaxOutputTokens != 1024 {
			t.Fatalf("unexpected generation config: %+v", req.GenerationConfig)
		}
		if req.GenerationConfig.Temperature == nil || *req.GenerationConfig.Temperature != 0.5 {
			t.Fatalf("unexpected temperature")
		}
		_, _ = w.Write([]byte(`{
			"modelVersion": "gemini-test",
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "hel"}, {"text": "lo"}]},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(GeminiConfig{BaseURL: server.URL, Token: "token", Model: "gemini-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello?"},
		},
		MaxTokens:   1024,
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "hello" || resp.FinishReason != "STOP" || resp.Model != "gemini-test" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(GeminiConfig{BaseURL: server.URL, Token: "token", Model: "gemini-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestGeminiErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(GeminiConfig{BaseURL: server.URL, Token: "token", Model: "gemini-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Status != http.StatusBadRequest || pe.Message != "API key not valid" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGeminiTransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewGeminiClient(GeminiConfig{BaseURL: server.URL, Token: "secret-key", Model: "gemini-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("api key leaked: %v", err)
	}
}

func TestGeminiURL(t *testing.T) {
	cases := map[string]string{
		"https://example.com":         "https://example.com/v1beta/models/m:generateContent?key=k",
		"https://example.com/v1":      "https://example.com/v1/models/m:generateContent?key=k",
		"https://example.com/v1beta/": "https://example.com/v1beta/models/m:generateContent?key=k",
	}
	for base, want := range cases {
		got, err := geminiURL(base, "m", "k")
		if err != nil {
			t.Fatalf("build url: %v", err)
		}
		if got != want {
			t.Fatalf("geminiURL(%q) = %s", base, got)
		}
	}
}
