package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rgower/typeset/internal/ai"
	"github.com/rgower/typeset/internal/api"
	"github.com/rgower/typeset/internal/config"
	"github.com/rgower/typeset/internal/pipeline"
	"github.com/rgower/typeset/internal/sink"
	"github.com/rgower/typeset/internal/styles"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := ai.NewCLIRunner(cfg.ModelCLIPath, cfg.ModelTimeout)

	var sinkClient *sink.Client
	if cfg.SinkURL != "" {
		sinkClient = sink.NewClient(cfg.SinkURL, cfg.SinkAPIKey)
	}

	catalog := styles.Default()
	if cfg.ReferenceTemplate != "" {
		c, err := styles.FromTemplate(cfg.ReferenceTemplate)
		if err != nil {
			log.Warn("reference template unusable, using defaults",
				"path", cfg.ReferenceTemplate, "error", err)
		} else {
			catalog = c
		}
	}

	orch := pipeline.NewOrchestrator(cfg, runner, sinkClient, catalog, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting typeset", "port", cfg.Port, "ai_enabled", cfg.AIEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
