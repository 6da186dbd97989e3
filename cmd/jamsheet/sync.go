package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sukalov/jamsheet/internal/db"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/songbook"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy the songs directory into the database the bots read from",
	Long: "Upserts every song file into the songs table and removes rows whose\n" +
		"file is gone. Open counters of surviving songs are kept.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		songs, err := songbook.NewDir(songsDir).AllSongs(ctx)
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.DatabaseURL, cfg.DatabaseAuthToken)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := db.Migrate(ctx, database); err != nil {
			return err
		}

		removed, err := db.NewSongStore(database).Sync(ctx, songs)
		if err != nil {
			logger.Error("songs sync failed", zap.Error(err))
			return err
		}
		logger.Success("songs synced", zap.Int("songs", len(songs)), zap.Int64("removed", removed))
		fmt.Fprintf(cmd.OutOrStdout(), "synced %d songs, removed %d\n", len(songs), removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
