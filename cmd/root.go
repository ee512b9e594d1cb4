// Package cmd assembles the pokeart command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pokeart/pokeart-go/cmd/config"
	"github.com/pokeart/pokeart-go/cmd/download"
	"github.com/pokeart/pokeart-go/cmd/info"
	"github.com/pokeart/pokeart-go/internal/app"
)

// flagBindings maps command line flags to their viper keys. Flags are bound
// for the command actually executed so that the root and download commands
// can share flag names.
var flagBindings = map[string]string{
	"debug":        "debug",
	"metrics-file": "metrics.file",
	"dir":          "output.dir",
	"parents":      "output.recursive",
}

// RootCommand creates and returns the root command. Running it without a
// subcommand downloads one random picture.
func RootCommand(ctx *app.Context) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "pokeart",
		Short:         "Download official Pokémon artwork",
		Long:          `Fetch a Pokémon record from PokeAPI and save its official artwork to disk.`,
		Version:       ctx.Build.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, &configFile)

	// The bare command behaves like download
	download.SetupFlags(rootCmd)
	rootCmd.RunE = download.Run(ctx)

	rootCmd.AddCommand(
		download.Command(ctx),
		info.Command(ctx),
		config.Command(ctx),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Command-line arguments take precedence over config and environment
		if err := bindFlags(cmd); err != nil {
			return err
		}
		return ctx.Initialize(configFile)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(configFile, "config", "", "Path to config file (default: ./config.yaml or ~/.config/pokeart/config.yaml)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this file on exit")
}

// bindFlags binds the flags of the executing command to viper keys.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}
