package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sopgen/internal/config"
)

type Options struct {
	Config string
}

func NewRootCmd() *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "sopgen",
		Short:         "sopgen - turn rough process notes into standard operating procedures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(func() {
		initConfig(opts.Config)
	})

	root.PersistentFlags().StringVar(
		&opts.Config,
		"config",
		"",
		"config file (default: ./sopgen.yaml)",
	)
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(newServeCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newTUICmd())
	root.AddCommand(newLLMCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func initConfig(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("sopgen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/sopgen")
	}

	viper.SetEnvPrefix("SOPGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return
		}
		fmt.Fprintln(os.Stderr, err.Error())
	}
}
