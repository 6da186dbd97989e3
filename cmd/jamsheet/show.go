package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sukalov/jamsheet/internal/render"
	"github.com/sukalov/jamsheet/internal/songbook"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Print a song with highlighted chords",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := songbook.NewDir(songsDir).SongBySlug(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		sheet := render.BuildSheet(song, cfg.Classifier())
		if showJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sheet)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.NewTerminal().Render(sheet))
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the classified sheet as JSON")
	rootCmd.AddCommand(showCmd)
}
