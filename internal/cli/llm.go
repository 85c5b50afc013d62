package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sopgen/internal/config"
	"sopgen/internal/llm"
)

type llmTestOptions struct {
	Type  string
	Model string
	URL   string
	Token string
}

func newLLMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Inspect LLM provider bindings",
	}

	cmd.AddCommand(newLLMProvidersCmd())
	cmd.AddCommand(newLLMTestCmd())
	return cmd
}

func newLLMProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their credential variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range llm.Names() {
				b, _ := llm.Lookup(name)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-18s %s\n", b.Name, b.CredentialEnv, b.DefaultModel); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newLLMTestCmd() *cobra.Command {
	opts := &llmTestOptions{}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test LLM connectivity with config or flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLLMTest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "override provider type")
	cmd.Flags().StringVar(&opts.Model, "model", "", "override model name")
	cmd.Flags().StringVar(&opts.URL, "url", "", "override base url")
	cmd.Flags().StringVar(&opts.Token, "token", "", "override access token")

	return cmd
}

func runLLMTest(cmd *cobra.Command, opts *llmTestOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	settings := cfg.LLM.Settings()
	if opts.Type != "" && opts.Type != settings.Type {
		b, ok := llm.Lookup(opts.Type)
		if !ok {
			return fmt.Errorf("unsupported llm.type: %s", opts.Type)
		}
		settings = llm.Settings{Type: b.Name, Token: os.Getenv(b.CredentialEnv)}
	}
	settings.Model = firstNonEmpty(opts.Model, settings.Model)
	settings.URL = firstNonEmpty(opts.URL, settings.URL)
	settings.Token = firstNonEmpty(opts.Token, settings.Token)
	if settings.Token == "" {
		return errors.New("no credential configured: set llm.token or the provider variable")
	}

	client, err := llm.New(settings)
	if err != nil {
		return err
	}
	resp, err := client.Chat(cmd.Context(), llm.ChatRequest{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
		MaxTokens: 16,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
	return err
}
