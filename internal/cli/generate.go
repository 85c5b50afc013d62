package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sopgen/internal/config"
	"sopgen/internal/render"
)

type generateOptions struct {
	InputFile string
	Endpoint  string
	Local     bool
	Text      bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate [notes...]",
		Short: "Generate one SOP from process notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.InputFile, "file", "F", "", "notes file, use -F- for stdin")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "generation endpoint url (overrides client.endpoint)")
	cmd.Flags().BoolVar(&opts.Local, "local", false, "call the provider directly instead of the endpoint")
	cmd.Flags().BoolVar(&opts.Text, "text", false, "print plain text instead of markup")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, args []string) error {
	input, err := readInput(args, opts.InputFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	backend, err := newBackend(cfg, opts.Local, opts.Endpoint)
	if err != nil {
		return err
	}

	content, err := backend.Generate(cmd.Context(), input)
	if err != nil {
		return err
	}
	if opts.Text {
		content = render.PlainText(content)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
	return err
}

func readInput(args []string, inputFile string, stdin io.Reader) (string, error) {
	if inputFile != "" && len(args) > 0 {
		return "", fmt.Errorf("input args and -F are mutually exclusive")
	}
	if inputFile == "" {
		if len(args) == 0 {
			return "", fmt.Errorf("missing input: provide args or -F")
		}
		return strings.Join(args, " "), nil
	}
	if inputFile == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return trimTrailingNewline(string(data)), nil
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return trimTrailingNewline(string(data)), nil
}

func trimTrailingNewline(value string) string {
	return strings.TrimRight(value, "\r\n")
}
