package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yhirano/auctionwatch/internal/config"
	"github.com/yhirano/auctionwatch/internal/monitor/factory"
	"github.com/yhirano/auctionwatch/internal/observability/otelx"
	"github.com/yhirano/auctionwatch/internal/trigger"
)

// defaultSchedule runs a pass every 30 minutes when the document does not
// pick its own cadence.
const defaultSchedule = "*/30 * * * *"

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()
	env := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "path to auctionwatch document")
	runOnce := flag.Bool("run-once", env.RunOnce, "run a single pass and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelx.Setup(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	if shutdownTracing != nil {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("tracing shutdown failed", "error", err)
			}
		}()
	}

	doc, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load document: %v", err)
	}

	mon, closeStores, err := factory.Build(logger, doc, env)
	if err != nil {
		log.Fatalf("failed to build monitor: %v", err)
	}
	defer func() {
		if err := closeStores(); err != nil {
			logger.Error("closing stores failed", "error", err)
		}
	}()

	// The first pass runs immediately so a fresh deployment bootstraps its
	// seen state without waiting for the first tick.
	mon.RunPass(ctx)
	if *runOnce {
		return
	}

	schedule, timezone := defaultSchedule, ""
	if doc.Trigger.Cron != nil {
		if doc.Trigger.Cron.Schedule != "" {
			schedule = doc.Trigger.Cron.Schedule
		}
		timezone = doc.Trigger.Cron.Timezone
	}
	cron := trigger.NewCron(schedule, timezone)
	events, err := cron.Start(ctx)
	if err != nil {
		log.Fatalf("failed to start schedule: %v", err)
	}

	logger.Info("auctionwatch started", "schedule", schedule)
	mon.Run(ctx, events)
}
