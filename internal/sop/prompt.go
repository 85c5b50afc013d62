package sop

import (
	"embed"
	"fmt"
	"strings"

	"sopgen/internal/llm"
)

//go:embed system_prompt.md
//go:embed user_prompt.md
var promptFS embed.FS

const (
	systemPromptPath = "system_prompt.md"
	userPromptPath   = "user_prompt.md"
)

// BuildMessages returns the fixed system instruction followed by the user's
// raw description.
func BuildMessages(prompt string) ([]llm.Message, error) {
	system, err := loadPrompt(systemPromptPath)
	if err != nil {
		return nil, err
	}
	userTemplate, err := loadPrompt(userPromptPath)
	if err != nil {
		return nil, err
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: renderPrompt(userTemplate, prompt)},
	}, nil
}

func loadPrompt(path string) (string, error) {
	data, err := promptFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func renderPrompt(template, prompt string) string {
	return strings.NewReplacer("{{prompt}}", prompt).Replace(template)
}
