// Package config implements the config command.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pokeart/pokeart-go/internal/app"
)

// redacted replaces secrets in printed settings.
const redacted = "[REDACTED]"

// Command creates the config command, which prints the effective settings.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := *ctx.Settings
			if settings.Telemetry.DSN != "" {
				settings.Telemetry.DSN = redacted
			}

			data, err := yaml.Marshal(&settings)
			if err != nil {
				return fmt.Errorf("error marshaling settings: %w", err)
			}

			out := cmd.OutOrStdout()
			if settings.ConfigFile != "" {
				fmt.Fprintf(out, "# loaded from %s\n", settings.ConfigFile)
			}
			_, err = out.Write(data)
			return err
		},
	}
}
