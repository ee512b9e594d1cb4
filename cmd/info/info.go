// Package info implements the info command.
package info

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pokeart/pokeart-go/internal/app"
	"github.com/pokeart/pokeart-go/internal/downloader"
)

// Command creates the info command, which prints a record without
// downloading its artwork.
func Command(ctx *app.Context) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the name and artwork URL of a Pokémon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("id") {
				id = downloader.RandomIdentifier()
			}

			rec, err := ctx.Downloader.Describe(cmd.Context(), id)
			if err != nil {
				return err
			}
			name, err := rec.DisplayName()
			if err != nil {
				return err
			}
			artwork, err := rec.ImageURL()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", cases.Title(language.English).String(name))
			fmt.Fprintf(out, "Identifier: %d\n", rec.ID)
			_, err = fmt.Fprintf(out, "Artwork:    %s\n", artwork)
			return err
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Identifier to describe (default: random)")

	return cmd
}
