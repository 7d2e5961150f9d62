// The worker binary drains the inbound-email queue and runs workflow
// turns. Replicas coordinate through per-thread Redis locks, so several
// workers can run against the same queue.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignite/freightdesk/internal/app"
	"github.com/ignite/freightdesk/internal/config"
	"github.com/ignite/freightdesk/internal/pkg/logger"
	"github.com/ignite/freightdesk/internal/queue"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.DEBUG)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if !cfg.Redis.Enabled {
		log.Fatal("worker requires redis: set REDIS_ADDR or enable redis in the config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wiring components: %v", err)
	}
	defer application.Close()

	logger.Info("worker: consuming", "queue", cfg.Redis.QueueKey, "redis", cfg.Redis.Addr)
	consumer := queue.NewConsumer(application.Queue, application.Orchestrator)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("worker: %v", err)
	}
	logger.Info("worker: stopped")
}
