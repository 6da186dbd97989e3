package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/lyrics"
	"github.com/sukalov/jamsheet/internal/lyrics/parsers/amdm"
	"github.com/sukalov/jamsheet/internal/songbook"
	"go.uber.org/zap"
)

var importOpts struct {
	slug       string
	difficulty string
	tags       []string
	dryRun     bool
}

var importCmd = &cobra.Command{
	Use:     "import <url>",
	Short:   "Import a chord sheet from amdm.ru into the songs directory",
	Example: "  jamsheet import https://amdm.ru/akkordi/kino/1/gruppa_krovi/ -t rock -d easy",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		url := args[0]

		config := amdm.DefaultConfig()
		config.Classifier = cfg.Classifier()
		service := lyrics.NewServiceWith(amdm.NewParserWith(amdm.NewClient(), config))

		result, err := service.Import(ctx, url)
		if err != nil {
			logger.Error("import failed", zap.String("url", url), zap.Error(err))
			return err
		}

		song := result.Song
		if importOpts.slug != "" {
			song.Slug = importOpts.slug
		}
		if importOpts.difficulty != "" {
			d, err := songbook.ParseDifficulty(importOpts.difficulty)
			if err != nil {
				return err
			}
			song.Difficulty = d
		}
		song.Tags = append(song.Tags, importOpts.tags...)

		if importOpts.dryRun {
			data, err := songbook.MarshalMarkdown(song)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		path, err := songbook.NewDir(songsDir).Save(song)
		if err != nil {
			return err
		}
		logger.Success("song imported",
			zap.String("url", url),
			zap.String("slug", song.Slug),
			zap.String("path", path),
			zap.Int("length", len(song.Content)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s to %s\n", songbook.FormatSongName(song), path)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importOpts.slug, "slug", "", "file name to save under instead of the one taken from the URL")
	importCmd.Flags().StringVarP(&importOpts.difficulty, "difficulty", "d", "", "easy, medium or hard")
	importCmd.Flags().StringSliceVarP(&importOpts.tags, "tag", "t", nil, "add a tag (repeatable)")
	importCmd.Flags().BoolVar(&importOpts.dryRun, "dry-run", false, "print the song file instead of saving it")
	rootCmd.AddCommand(importCmd)
}
