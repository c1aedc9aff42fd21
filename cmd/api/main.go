// Command api serves a local stand-in for the scraping service. Submitted
// jobs advance one status per step so the terminal client has something to
// watch.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scrape-client-go/pkg/api"
	"scrape-client-go/pkg/cli/logger"
	"scrape-client-go/pkg/config"
	"scrape-client-go/pkg/poll"
	"scrape-client-go/pkg/services"
)

func main() {
	if err := config.LoadEnv("", false); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logger.ParseLevel(cfg.Log.Level),
	})).With("app", "scrape-devserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := services.NewScrapeService()
	router := api.NewRouter(service, log)

	step := time.Duration(cfg.DevServer.StepSeconds) * time.Second
	simulator := poll.Start(ctx, step, func(ctx context.Context) {
		if n := service.Advance(ctx); n > 0 {
			log.Debug("advanced jobs", "count", n)
		}
	})
	defer simulator.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.DevServer.Host, cfg.DevServer.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("API server starting", "addr", srv.Addr, "step", step)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
