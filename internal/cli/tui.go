package cli

import (
	"github.com/spf13/cobra"

	"sopgen/internal/config"
	"sopgen/internal/tui"
)

type tuiOptions struct {
	Endpoint string
	Local    bool
}

func newTUICmd() *cobra.Command {
	opts := &tuiOptions{}
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive SOP editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			backend, err := newBackend(cfg, opts.Local, opts.Endpoint)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Options{
				Backend:        backend,
				OutputDir:      cfg.Client.OutputDir,
				NoticeDuration: cfg.Client.NoticeDuration,
			})
		},
	}
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "generation endpoint url (overrides client.endpoint)")
	cmd.Flags().BoolVar(&opts.Local, "local", false, "call the provider directly instead of the endpoint")
	return cmd
}
