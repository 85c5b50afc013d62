package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sopgen/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "sopgen %s\n", version.Version)
			return err
		},
	}
}
