package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/denchenko/mrdigest/internal/adapters"
	"github.com/denchenko/mrdigest/internal/config"
	"github.com/denchenko/mrdigest/internal/core"
	applog "github.com/denchenko/mrdigest/internal/log"
	"github.com/rs/zerolog/log"
	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"
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

	cmd, err := do.Invoke[*cobra.Command](injector)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create CLI command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal().Err(err).Send()
	}
}
