// The server binary accepts inbound-email webhooks and serves thread
// inspection endpoints. With Redis enabled it only buffers payloads for
// the worker; otherwise every email is processed inline.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/freightdesk/internal/api"
	"github.com/ignite/freightdesk/internal/app"
	"github.com/ignite/freightdesk/internal/config"
	"github.com/ignite/freightdesk/internal/pkg/logger"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wiring components: %v", err)
	}
	defer application.Close()

	srv := api.NewServer(cfg.Server, application.Store, application.Orchestrator,
		application.Queue, application.LockDB)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server: shutdown", "error", err.Error())
		}
	}
}
