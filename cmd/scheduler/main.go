// The scheduler command runs the daily follow-up loop as a standalone
// process: one pass immediately on startup, then one per day at the
// configured wall-clock time.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/signetlabs/chase/internal/agents"
	"github.com/signetlabs/chase/internal/config"
	"github.com/signetlabs/chase/internal/followup"
	"github.com/signetlabs/chase/internal/infrastructure"
	"github.com/signetlabs/chase/pkg/lifecycle"
	"github.com/signetlabs/chase/pkg/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}
	logger := infra.Logger.With("module", "scheduler")

	rt := &followup.Runtime{
		Tracker:   infra.Tracker,
		Signing:   infra.Signing,
		Drafter:   agents.NewDrafter(infra.Agent, logger),
		Mailer:    infra.Mailer,
		Notifier:  infra.Notifier,
		Logger:    logger,
		Threshold: cfg.Followup.ThresholdDuration(),
		Link:      infra.Signing.Link,
	}

	daily, err := scheduler.New(cfg.Followup.DailyTime, func(ctx context.Context) error {
		_, err := followup.Run(ctx, rt, time.Now())
		return err
	}, logger)
	if err != nil {
		log.Fatal("scheduler init failed: ", err)
	}

	logger.Info(
		"chase scheduler starting",
		"version", cfg.Version,
		"daily_time", cfg.Followup.DailyTime,
		"threshold", cfg.Followup.Threshold,
		"tracker", infra.Tracker.Path(),
		"env", cfg.Env(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := lifecycle.AwaitSignal(ctx)
		if sig != nil {
			logger.Info("signal received", "signal", sig)
		}
		cancel()
	}()

	if err := daily.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("scheduler stopped: ", err)
	}
	logger.Info("chase scheduler stopped")
}
