package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"repbot/bot"
	"repbot/config"
	"repbot/database"
	"repbot/metrics"
	"repbot/ranking"
	"repbot/repository"
	"repbot/service"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting repbot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metrics.Handler(registry),
		}
		go func() {
			log.Infof("Serving metrics on %s", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	reputationService := service.NewReputationService(userRepo, auditRepo, ranking.Default(), recorder)

	log.Info("Initializing Telegram bot...")
	telegramBot, err := bot.New(cfg, reputationService, recorder)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	if err := telegramBot.Start(ctx); err != nil {
		return fmt.Errorf("bot stopped with error: %w", err)
	}

	log.Info("Shutting down...")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}

	return nil
}
