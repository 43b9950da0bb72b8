// Command gateway runs the bancho gateway HTTP process: it loads
// configuration, wires the backend service clients and packet dispatch
// registry, and serves until an interrupt signal arrives.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/config"
	"github.com/osu-server/bancho-gateway/internal/handlers"
	"github.com/osu-server/bancho-gateway/internal/httpapi"
	"github.com/osu-server/bancho-gateway/internal/metrics"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	httpClient := backend.NewHTTPClient(cfg.BackendTimeout)
	clients := httpapi.Clients{
		Users:    backend.NewUsersClient(httpClient, cfg.UsersBaseURL, log),
		Chats:    backend.NewChatsClient(httpClient, cfg.ChatsBaseURL, log),
		Beatmaps: backend.NewBeatmapsClient(httpClient, cfg.BeatmapsBaseURL, log),
		Scores:   backend.NewScoresClient(httpClient, cfg.ScoresBaseURL, log),
	}

	collectors := metrics.New(prometheus.DefaultRegisterer)
	registry := handlers.NewRegistry().WithMetrics(collectors)

	srv := httpapi.New(httpapi.Config{
		LoginRateLimit: cfg.LoginRateLimit,
		LoginRateBurst: cfg.LoginRateBurst,
	}, clients, registry, collectors, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	log.Info("gateway listening", "addr", cfg.Addr)
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		log.Error("gateway stopped with error", "err", err)
		os.Exit(1)
	}
}
