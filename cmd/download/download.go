// Package download implements the download command.
package download

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pokeart/pokeart-go/internal/app"
	"github.com/pokeart/pokeart-go/internal/downloader"
)

// Command creates the download command.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download one picture",
		Long: fmt.Sprintf(`Download the official artwork of one Pokémon. Without --id a random
identifier in [%d, %d] is used.`, downloader.MinIdentifier, downloader.MaxIdentifier),
		Args: cobra.NoArgs,
		RunE: Run(ctx),
	}

	SetupFlags(cmd)

	return cmd
}

// SetupFlags configures the download flags on cmd.
func SetupFlags(cmd *cobra.Command) {
	cmd.Flags().Int("id", 0, "Identifier to download (default: random)")
	cmd.Flags().String("dir", "", "Output directory (default: storage)")
	cmd.Flags().Bool("parents", false, "Create missing parent directories of the output directory")
}

// Run returns the download handler. The application context must be
// initialized before the handler runs.
func Run(ctx *app.Context) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := cmd.Flags().GetInt("id")
		if err != nil {
			return err
		}

		var pic *downloader.Picture
		if cmd.Flags().Changed("id") {
			pic, err = ctx.Downloader.DownloadPicture(cmd.Context(), id)
		} else {
			pic, err = ctx.Downloader.DownloadRandom(cmd.Context())
		}
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "New image is saved to: %s\n", pic.Path)
		return err
	}
}
