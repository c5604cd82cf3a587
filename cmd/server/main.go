package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denchenko/mrdigest/internal/adapters"
	httpadapter "github.com/denchenko/mrdigest/internal/adapters/primary/http"
	"github.com/denchenko/mrdigest/internal/config"
	"github.com/denchenko/mrdigest/internal/core"
	applog "github.com/denchenko/mrdigest/internal/log"
	"github.com/rs/zerolog/log"
	do "github.com/samber/do/v2"
)

func main() {
	injector := do.New(
		config.Package,
		core.Package,
		adapters.SecondaryPackage,
		adapters.PrimaryPackage,
	)

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := applog.Setup(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	server, err := do.Invoke[*httpadapter.Server](injector)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
}
