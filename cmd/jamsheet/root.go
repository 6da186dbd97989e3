package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sukalov/jamsheet/internal/config"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/songbook"
)

var (
	cfg      = config.Load()
	songsDir string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "jamsheet",
	Short:         "jamsheet keeps a guitar songbook of chord sheets.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg := cfg.Logger()
		logCfg.Level = logLevel
		return logger.Init(logCfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&songsDir, "songs", cfg.SongsDir, "directory of <slug>.md song files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
}

// loadSongbook reads every song under --songs.
func loadSongbook(ctx context.Context) (*songbook.Songbook, error) {
	sb := songbook.New(songbook.NewDir(songsDir))
	if err := sb.Reload(ctx); err != nil {
		return nil, err
	}
	return sb, nil
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
