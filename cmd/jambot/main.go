package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sukalov/jamsheet/internal/bot"
	"github.com/sukalov/jamsheet/internal/bot/admin"
	"github.com/sukalov/jamsheet/internal/bot/client"
	"github.com/sukalov/jamsheet/internal/config"
	"github.com/sukalov/jamsheet/internal/db"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/lyrics"
	"github.com/sukalov/jamsheet/internal/lyrics/parsers/amdm"
	"github.com/sukalov/jamsheet/internal/redis"
	"github.com/sukalov/jamsheet/internal/server"
	"github.com/sukalov/jamsheet/internal/songbook"
	"github.com/sukalov/jamsheet/internal/state"
	"github.com/sukalov/jamsheet/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if _, err := utils.LoadEnv([]string{"BOT_TOKEN", "ADMIN_BOT_TOKEN", "REDIS_URL"}); err != nil {
		log.Fatalf("required env missing: %v", err)
	}

	cfg := config.Load()
	if err := logger.Init(cfg.Logger()); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("jambot stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("jambot stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	database, err := db.Open(cfg.DatabaseURL, cfg.DatabaseAuthToken)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	songStore := db.NewSongStore(database)
	players := db.NewPlayerStore(database)

	redisManager, err := redis.NewDBManager(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return err
	}
	defer redisManager.Close()
	if err := redisManager.Ping(ctx); err != nil {
		return err
	}

	sessions := state.NewStateManager(redisManager)
	if err := sessions.Init(ctx); err != nil {
		return err
	}

	songs := songbook.New(songStore)
	if err := songs.Reload(ctx); err != nil {
		return err
	}

	clientBot, err := bot.New("jam", cfg.BotToken)
	if err != nil {
		return err
	}
	adminBot, err := bot.New("admin", cfg.AdminBotToken)
	if err != nil {
		return err
	}
	if cfg.LogChannelID != 0 {
		logger.AttachChannel(adminBot, cfg.LogChannelID)
	}

	classifier := cfg.Classifier()
	amdmConfig := amdm.DefaultConfig()
	amdmConfig.Classifier = classifier
	importer := lyrics.NewServiceWith(amdm.NewParserWith(amdm.NewClient(), amdmConfig))

	clientHandlers := client.NewClientHandlers(client.Deps{
		Songs:       songs,
		Sessions:    sessions,
		Players:     players,
		SongCounter: songStore,
		PlayCounter: redisManager,
		Classifier:  classifier,
	})
	adminHandlers := admin.NewAdminHandlers(admin.Deps{
		Songs:       songs,
		Sessions:    sessions,
		Admins:      cfg.Admins,
		Importer:    importer,
		Saver:       songStore,
		Stats:       songStore,
		PlayCounter: redisManager,
		Classifier:  classifier,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clientBot.Start(ctx, clientHandlers.Handlers())
		return nil
	})
	g.Go(func() error {
		adminBot.Start(ctx, adminHandlers.Handlers())
		return nil
	})
	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			return server.New(songs, classifier).Run(ctx, cfg.HTTPAddr)
		})
	}

	logger.Success(fmt.Sprintf("jambot started: %d songs, %d open sessions", songs.Len(), sessions.Len()))
	return g.Wait()
}
