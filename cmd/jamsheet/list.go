package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sukalov/jamsheet/internal/render"
	"github.com/sukalov/jamsheet/internal/songbook"
)

var listFilter struct {
	query      string
	difficulty string
	tags       []string
	playlist   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List songs, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := songbook.Filter{
			Query:    listFilter.query,
			Tags:     listFilter.tags,
			Playlist: listFilter.playlist,
		}
		if listFilter.difficulty != "" {
			d, err := songbook.ParseDifficulty(listFilter.difficulty)
			if err != nil {
				return err
			}
			filter.Difficulty = d
		}

		sb, err := loadSongbook(cmd.Context())
		if err != nil {
			return err
		}
		songs := sb.Search(filter)
		if len(songs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no songs match")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), render.NewTerminal().RenderList(songs))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listFilter.query, "query", "q", "", "match title or artist")
	listCmd.Flags().StringVarP(&listFilter.difficulty, "difficulty", "d", "", "easy, medium, hard or any")
	listCmd.Flags().StringSliceVarP(&listFilter.tags, "tag", "t", nil, "require a tag (repeatable)")
	listCmd.Flags().StringVarP(&listFilter.playlist, "playlist", "p", "", "only songs in this playlist")
	rootCmd.AddCommand(listCmd)
}
