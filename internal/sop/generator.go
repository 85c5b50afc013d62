package sop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sopgen/internal/config"
	"sopgen/internal/llm"
)

const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.5

	// EmptyContent is returned when the provider answers with no text.
	EmptyContent = "No content generated."
)

var ErrEmptyPrompt = errors.New("prompt is required")

type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Generator performs the one provider call behind the generation endpoint.
type Generator struct {
	client llm.Client
	opts   Options
}

func NewGenerator(client llm.Client, opts Options) (*Generator, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Generator{client: client, opts: opts}, nil
}

// FromConfig builds the provider client for cfg and wraps it in a Generator.
func FromConfig(cfg config.LLMConfig) (*Generator, error) {
	client, err := llm.New(cfg.Settings())
	if err != nil {
		return nil, fmt.Errorf("init %s client: %w", cfg.Type, err)
	}
	return NewGenerator(client, Options{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
}

// Generate converts raw process notes into SOP markup. The provider's text is
// returned as is.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	messages, err := BuildMessages(prompt)
	if err != nil {
		return "", err
	}
	return g.CompleteChat(ctx, messages[0].Content, messages[1].Content)
}

// CompleteChat sends one system instruction and one user message.
func (g *Generator) CompleteChat(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Chat(ctx, llm.ChatRequest{
		Model: g.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", err
	}
	if resp.Content == "" {
		return EmptyContent, nil
	}
	return resp.Content, nil
}
