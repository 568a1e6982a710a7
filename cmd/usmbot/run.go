package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	infracontainer "usmbot/internal/infrastructure/container"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll followed accounts and trade when the trigger phrase is heard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := buildContainers(cfg, true)
			defer c.Close()

			p, err := c.Poller()
			if err != nil {
				return err
			}

			if cfg.Metrics.Enabled {
				go serveMetrics(ctx, c.Infra(), cfg.Metrics.Addr)
			}
			if rec := c.MarketRecorder(); rec != nil {
				go func() {
					if err := rec.Run(ctx, []string{cfg.ProductID()}); err != nil && !errors.Is(err, context.Canceled) {
						log.Error().Err(err).Msg("market recorder exited")
					}
				}()
			}

			log.Info().
				Str("config", configPath).
				Str("product", cfg.ProductID()).
				Float64("fiat_amount", cfg.Trading.FiatAmount).
				Str("trigger", cfg.Trading.TriggerPhrase).
				Int("accounts", len(cfg.Accounts)).
				Msg("usmbot started")

			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("poller exited")
				return err
			}
			log.Info().Msg("usmbot stopped")
			return nil
		},
	}
}

func serveMetrics(ctx context.Context, infra *infracontainer.Container, addr string) {
	if err := infra.Metrics().Serve(ctx, addr); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
	}
}
