package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sopgen/internal/config"
	"sopgen/internal/logging"
	"sopgen/internal/metrics"
	"sopgen/internal/sop"
)

const (
	MsgMethodNotAllowed = "Method Not Allowed"
	MsgPromptRequired   = "Prompt is required"
	MsgConfigError      = "Server configuration error (API Key missing)"
	MsgGenerateFailed   = "Failed to generate SOP"
)

// Generator is the part of sop.Generator the endpoint depends on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request is the transport-neutral view of an incoming call.
type Request struct {
	Method string
	Body   []byte
}

type Response struct {
	StatusCode int
	Body       []byte
}

type GenerationRequest struct {
	Prompt string `json:"prompt"`
}

type GenerationResponse struct {
	Content string `json:"content"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Options struct {
	// Generator is nil when no provider credential is configured.
	Generator     Generator
	Provider      string
	CredentialEnv string
	Timeout       time.Duration
	Metrics       metrics.Metrics
}

// Endpoint is stateless; one value serves concurrent requests.
type Endpoint struct {
	generator     Generator
	provider      string
	credentialEnv string
	timeout       time.Duration
	metrics       metrics.Metrics
}

func New(opts Options) *Endpoint {
	m := opts.Metrics
	if m == nil {
		m = metrics.Noop{}
	}
	return &Endpoint{
		generator:     opts.Generator,
		provider:      opts.Provider,
		credentialEnv: opts.CredentialEnv,
		timeout:       opts.Timeout,
		metrics:       m,
	}
}

// FromConfig wires the configured provider binding. A missing credential
// yields an endpoint that answers with the configuration error.
func FromConfig(cfg config.Config, m metrics.Metrics) (*Endpoint, error) {
	opts := Options{
		Provider:      cfg.LLM.Type,
		CredentialEnv: cfg.LLM.CredentialEnv,
		Timeout:       cfg.Server.RequestTimeout,
		Metrics:       m,
	}
	if !cfg.LLM.HasCredential() {
		logging.Error("endpoint", "provider credential missing", "provider", cfg.LLM.Type, "env", cfg.LLM.CredentialEnv)
		return New(opts), nil
	}
	gen, err := sop.FromConfig(cfg.LLM)
	if err != nil {
		return nil, err
	}
	opts.Generator = gen
	return New(opts), nil
}

// Handle answers one generation call. Every failure is converted into a
// structured response; nothing escapes as a panic or error.
func (e *Endpoint) Handle(ctx context.Context, req Request) (resp Response) {
	if req.Method != http.MethodPost {
		return errorResponse(http.StatusMethodNotAllowed, MsgMethodNotAllowed, "")
	}

	var body GenerationRequest
	if err := json.Unmarshal(req.Body, &body); err != nil || strings.TrimSpace(body.Prompt) == "" {
		return errorResponse(http.StatusBadRequest, MsgPromptRequired, "")
	}

	if e.generator == nil {
		logging.Error("endpoint", "provider credential missing", "provider", e.provider, "env", e.credentialEnv)
		return errorResponse(http.StatusInternalServerError, MsgConfigError, "")
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("endpoint", "generation panicked", "provider", e.provider, "panic", r)
			e.metrics.IncProviderCall(e.provider, "error")
			resp = errorResponse(http.StatusInternalServerError, MsgGenerateFailed, fmt.Sprintf("panic: %v", r))
		}
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := e.generator.Generate(ctx, body.Prompt)
	if err != nil {
		if errors.Is(err, sop.ErrEmptyPrompt) {
			return errorResponse(http.StatusBadRequest, MsgPromptRequired, "")
		}
		e.metrics.IncProviderCall(e.provider, "error")
		logging.Error("endpoint", "generation failed", "provider", e.provider, "duration", time.Since(start), "err", err)
		return errorResponse(http.StatusInternalServerError, MsgGenerateFailed, err.Error())
	}
	e.metrics.IncProviderCall(e.provider, "ok")
	logging.Info("endpoint", "generated sop", "provider", e.provider, "duration", time.Since(start), "bytes", len(content))
	return jsonResponse(http.StatusOK, GenerationResponse{Content: content})
}

func errorResponse(status int, msg, details string) Response {
	return jsonResponse(status, ErrorResponse{Error: msg, Details: details})
}

func jsonResponse(status int, v any) Response {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body:       []byte(`{"error":"` + MsgGenerateFailed + `"}`),
		}
	}
	return Response{StatusCode: status, Body: bytes.TrimSuffix(buf.Bytes(), []byte("\n"))}
}
