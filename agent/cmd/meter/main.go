package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecolab/ecolab/agent/internal/config"
	"github.com/ecolab/ecolab/agent/internal/shipper"
	"github.com/ecolab/ecolab/agent/internal/simulator"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("ecolab-meter starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"server_endpoint", cfg.Agent.ServerEndpoint,
		"meters", len(cfg.Agent.Meters),
		"interval", cfg.Agent.Interval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fleet := simulator.NewFleet(cfg.Agent.Meters)
	if fleet.Len() == 0 {
		slog.Warn("no meters configured, agent will idle until the config changes")
	}

	// Meters can be added, removed or retuned live. Endpoint, auth and
	// interval changes need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			fleet.Update(updated.Agent.Meters)
			slog.Info("meters reloaded", "meters", fleet.Len())
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	ship := shipper.New(cfg.Agent)
	go ship.Run(ctx)

	ticker := time.NewTicker(cfg.Agent.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("ecolab-meter shutting down", "pending", ship.Pending())
			return
		case t := <-ticker.C:
			for _, req := range fleet.Tick(t) {
				ship.Ship(req)
			}
		}
	}
}
