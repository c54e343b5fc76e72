package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"dineflow/internal/common/config"
	"dineflow/internal/common/logger"
	"dineflow/internal/mcp"
	"dineflow/internal/microservices/notificator"
	"dineflow/internal/microservices/order"
)

const modes = "api | notification-subscriber | mcp"

func main() {
	mode := flag.String("mode", "api", modes)
	cfgPath := flag.String("config", "", "path to YAML config (default: config.yaml if present)")
	port := flag.Int("port", 0, "api: http port, overrides config")
	flag.Parse()

	lg := logger.New("bootstrap")
	if *mode == "mcp" {
		// stdout carries the protocol
		lg = logger.NewWithWriter("bootstrap", os.Stderr)
	}

	path := *cfgPath
	if path == "" {
		found, err := config.FindConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			lg.Error("config_lookup_failed", err, nil)
			os.Exit(1)
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": path})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	lg.SetLevel(cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "api":
		lg.Info("service_started", map[string]any{"service": "api", "port": cfg.HTTP.Port, "backend": cfg.Storage.Backend})
		err = order.Run(ctx, cfg, lg.Named("api"))
	case "notification-subscriber":
		if !cfg.Rabbit.Enabled() {
			fmt.Fprintln(os.Stderr, "notification-subscriber needs RABBITMQ_HOST or rabbitmq.host")
			os.Exit(2)
		}
		lg.Info("service_started", map[string]any{"service": "notification-subscriber", "queue": cfg.Rabbit.Queue})
		err = notificator.Start(ctx, cfg, lg.Named("notification-subscriber"))
	case "mcp":
		err = runMCP(ctx, cfg, lg.Named("mcp"))
	default:
		fmt.Fprintln(os.Stderr, "--mode must be one of: "+modes)
		os.Exit(2)
	}
	if err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
	lg.Info("service_stopped", map[string]any{"mode": *mode})
}

func runMCP(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	core, err := order.Build(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer core.Close()
	return mcp.NewServer(core.Service, lg).Serve(ctx)
}
