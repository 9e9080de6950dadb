package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maunium.net/go/mautrix/id"

	"github.com/blackmichael/matrix-embeds/internal/bot"
	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/fetch"
	"github.com/blackmichael/matrix-embeds/internal/matrix"
	"github.com/blackmichael/matrix-embeds/internal/mediacache"
	"github.com/blackmichael/matrix-embeds/internal/providers"
	"github.com/blackmichael/matrix-embeds/internal/router"
	"github.com/blackmichael/matrix-embeds/internal/thumbnail"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cache, err := mediacache.NewRepository(cfg.MediaCachePath)
	if err != nil {
		return fmt.Errorf("open media cache: %w", err)
	}
	defer cache.Close()

	client, err := matrix.NewClient(cfg.Homeserver, cfg.UserID, cfg.AccessToken)
	if err != nil {
		return fmt.Errorf("create matrix client: %w", err)
	}

	fetcher := fetch.NewClient(time.Duration(cfg.RequestTimeout) * time.Second)
	thumbs := thumbnail.NewService(
		fetcher,
		client,
		cache,
		cfg.UserAgent,
		time.Duration(cfg.ThumbnailDelayMS)*time.Millisecond,
	)
	dispatcher := bot.NewDispatcher(
		cfg,
		router.New(cfg),
		providers.NewRegistry(cfg),
		fetcher,
		thumbs,
		client,
		logger,
	)

	// Each message is handled on its own goroutine so a slow media download
	// never stalls the sync loop. The sync context ends with the iteration,
	// so the handler gets a detached one.
	client.OnMessage(func(ctx context.Context, roomID id.RoomID, eventID id.EventID, body string) {
		go dispatcher.HandleMessage(context.WithoutCancel(ctx), roomID, eventID, body)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	logger.Info("bot started", "homeserver", cfg.Homeserver, "user_id", cfg.UserID)

	if err := client.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}
