package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/server"
	"github.com/sukalov/jamsheet/internal/songbook"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the songbook as a JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sb, err := loadSongbook(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("serving %d songs from %s", sb.Len(), songsDir))

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return server.New(sb, cfg.Classifier()).Run(ctx, serveAddr)
		})
		if serveWatch {
			g.Go(func() error {
				return songbook.WatchAndReload(ctx, sb, songsDir)
			})
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", cfg.HTTPAddr, "listen address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "reload songs when files under --songs change")
	rootCmd.AddCommand(serveCmd)
}
