// cmd/site-engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"madsag-engine/internal/common/config"
	"madsag-engine/internal/common/database"
	"madsag-engine/internal/common/logger"
	"madsag-engine/internal/common/observability"
	"madsag-engine/internal/cta"
	"madsag-engine/internal/leads"
	"madsag-engine/internal/modals"
	"madsag-engine/internal/server"
	"madsag-engine/internal/session"
	"madsag-engine/internal/siteconfig"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting site engine...",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	var drafts leads.DraftStore
	if err != nil {
		// Drafts are an enhancement, not a dependency. Run without them.
		zapLog.Warn("redis unavailable, running with in-memory drafts", zap.Error(err))
		drafts = leads.NewMemoryDraftStore()
	} else {
		defer redisClient.Close()
		drafts = leads.NewRedisDraftStore(redisClient.Client, config.GetDuration(cfg.Sessions.DraftTTL))
		zapLog.Info("Redis connected successfully")
	}

	// --- Lead submission pipeline ---
	leadsClient := leads.NewClient(
		cfg.CMS.BaseURL,
		cfg.CMS.APIToken,
		config.GetDuration(cfg.CMS.Timeout),
		log,
	)
	submit := instrumentedSubmit(leadsClient, obs)

	ctaRouter := cta.NewRouter(cfg.WhatsApp.PhoneNumber, cfg.Brand.Name, cfg.WhatsApp.MessageTemplate)

	sessions := session.NewManager(cfg.Sessions, submit, drafts, ctaRouter, obs, log)
	sessions.StartSweeper()
	defer sessions.Stop()

	srv := server.New(*cfg, sessions, log)

	// --- One-shot site config load ---
	loader := siteconfig.NewLoader(cfg.CMS.BaseURL, cfg.CMS.APIToken, config.GetDuration(cfg.CMS.Timeout), log)
	if siteCfg, err := loader.Load(ctx); err != nil {
		// Brand fallbacks from config stay in effect.
		zapLog.Warn("site config load failed, using defaults", zap.Error(err))
	} else {
		srv.ApplySiteConfig(siteCfg)
		zapLog.Info("site config applied", zap.String("siteName", siteCfg.SiteName))
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddress,
		Handler: srv.Router(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Site engine stopped")
}

// instrumentedSubmit wraps the leads client with submission metrics.
func instrumentedSubmit(client *leads.Client, obs *observability.Observability) modals.SubmitFunc {
	return func(ctx context.Context, record *leads.Record) (*leads.Submission, error) {
		start := time.Now()
		submission, err := client.Submit(ctx, record)

		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		obs.RecordSubmission(ctx, outcome)
		obs.RecordSubmissionDuration(ctx, time.Since(start), outcome)

		return submission, err
	}
}
