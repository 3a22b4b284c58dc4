package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"amazonpay/internal/bootstrap"
	"amazonpay/internal/config"
	cronpkg "amazonpay/internal/cron"
	"amazonpay/internal/handler"
	"amazonpay/internal/ipn"
	"amazonpay/internal/middleware"
	"amazonpay/internal/pkg/telegram"
	"amazonpay/internal/repository"
	"amazonpay/internal/router"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the IPN webhook server",
		Long: `Run the HTTP server that receives Amazon Pay instant payment notifications.

Routes:
  POST /ipn            authenticate, deduplicate, store and announce a notification
  GET  /notifications  list stored notifications
  GET  /metrics        Prometheus metrics
  GET  /health         liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return runServe(a)
		},
	}
}

func runServe(a *app) error {
	cfg, logger := a.cfg, a.logger

	deps := handler.IPNDeps{
		Certs:   ipn.NewCertFetcher(a.httpClient(), cfg.AmazonPay.LogEnabled, logger, a.metrics),
		Metrics: a.metrics,
		Logger:  logger,
	}

	// --- Database (optional) ---
	if cfg.Database.Name != "" {
		db, err := config.NewDatabase(&cfg.Database, logger)
		if err != nil {
			return err
		}
		if err := bootstrap.Migrate(db); err != nil {
			return fmt.Errorf("failed to bootstrap database schema: %w", err)
		}
		deps.Store = repository.NewNotificationRepository(db)
	}

	// --- Notification Deduper (Redis with in-memory fallback) ---
	dedup, err := middleware.NewMessageDeduper(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB, cfg.Redis.DedupTTL)
	if err != nil {
		logger.Warn("Redis unavailable for IPN dedup, using in-memory fallback", zap.Error(err))
	}
	deps.Dedup = dedup

	// --- Telegram admin notices (optional) ---
	if bot := telegram.NewBotAPI(cfg.Telegram.Token); bot.Enabled() && cfg.Telegram.AdminID != "" {
		deps.Notifier = bot
		deps.AdminID = cfg.Telegram.AdminID
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true
	router.Setup(e, handler.NewIPNHandler(deps), a.registry, logger)

	// --- Cron Scheduler (needs MWS credentials) ---
	var scheduler *cronpkg.Scheduler
	if client, err := a.paymentClient(); err != nil {
		logger.Warn("Service status probe disabled", zap.Error(err))
	} else {
		scheduler = cronpkg.New(cfg.Schedule.StatusProbe, client, a.metrics, logger)
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting IPN server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}
