package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/ecolab/ecolab/pkg/labrpc"
	"github.com/ecolab/ecolab/server/internal/alerts"
	"github.com/ecolab/ecolab/server/internal/api"
	"github.com/ecolab/ecolab/server/internal/auth"
	"github.com/ecolab/ecolab/server/internal/config"
	"github.com/ecolab/ecolab/server/internal/lab"
	"github.com/ecolab/ecolab/server/internal/metrics"
	"github.com/ecolab/ecolab/server/internal/monitor"
	"github.com/ecolab/ecolab/server/internal/receiver"
	"github.com/ecolab/ecolab/server/internal/store"
	"github.com/ecolab/ecolab/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve the lab UI static files from this directory (e.g. ui/dist); leave empty to disable")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("ecolab-server starting", "config", *configPath)

	cfg, watchConfig, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"grpc_port", cfg.Server.GRPCPort,
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"locale", cfg.Server.Lab.EffectiveLocale(),
		"session_ttl", cfg.Server.Sessions.TTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Session store with background TTL eviction.
	st := store.New(cfg.Server.Sessions.TTL, cfg.Server.Lab.HistorySize)
	go st.Run(ctx)

	rec := metrics.New(func() float64 { return float64(st.Count()) })
	alertEngine := alerts.New(cfg.Server.Alerts)
	svc := lab.New(st, cfg.Server.Lab.EffectiveLocale(), alertEngine, rec)

	// Appends readings of monitored sessions to their history.
	go monitor.New(svc, cfg.Server.Lab.MonitorInterval).Run(ctx)

	if watchConfig {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				alertEngine.SetRules(next.Server.Alerts)
				svc.SetLocale(next.Server.Lab.EffectiveLocale())
			})
			if err != nil {
				slog.Error("config watch stopped", "err", err)
			}
		}()
	}

	guard := auth.New(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	if cfg.Server.Auth.Mode == "apikey" && !guard.Enabled() {
		slog.Warn("auth mode is apikey but no key is set; accepting all clients",
			"key_env", cfg.Server.Auth.KeyEnv)
	}

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(guard.UnaryInterceptor()))
	labrpc.RegisterReadingServiceServer(grpcSrv, receiver.New(svc))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		slog.Error("failed to listen on gRPC port",
			"port", cfg.Server.GRPCPort, "err", err)
		os.Exit(1)
	}

	go func() {
		slog.Info("gRPC receiver listening", "port", cfg.Server.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()

	hub := ws.New(svc, alertEngine, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API, metrics and WebSocket hub on HTTPPort.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", guard.Middleware(api.New(svc, alertEngine)))
	httpMux.Handle("/metrics", rec.Handler())
	httpMux.Handle("/ws/stream", hub)

	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		files := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			files.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("ecolab-server shutting down")
	grpcSrv.GracefulStop()
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// loadConfig reads path. A missing file falls back to the built-in defaults
// and disables hot reload.
func loadConfig(path string) (*config.Config, bool, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return config.Default(), false, nil
	}
	return nil, false, err
}
