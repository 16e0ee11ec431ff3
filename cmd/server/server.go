package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"tickbook/internal/config"
	"tickbook/internal/engine"
	"tickbook/internal/ingress"
)

func main() {
	cfg := config.Parse()

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	eng := engine.New(logger)
	listener := ingress.New(cfg.Address, eng, logger)

	if err := listener.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("ingress listener exited")
	}
}
