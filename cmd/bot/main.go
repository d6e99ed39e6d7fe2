package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/smakfood/smakbot/core/buildinfo"
	"github.com/smakfood/smakbot/core/config"
	"github.com/smakfood/smakbot/core/logger"
	"github.com/smakfood/smakbot/internal/app"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()

	logger.L.Info("boot",
		slog.String("component", "app"),
		slog.String("event", "boot"),
		slog.String("version", buildinfo.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		logger.L.Error("boot.fail",
			slog.String("component", "app"),
			slog.String("err", err.Error()),
		)
		return
	}

	if err := a.Run(ctx); err != nil {
		logger.L.Error("run.fail",
			slog.String("component", "app"),
			slog.String("err", err.Error()),
		)
	}
}
