package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"deadline_notifier/internal/app"
	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/infra/alert"
	"deadline_notifier/internal/infra/cache"
	"deadline_notifier/internal/infra/config"
	idb "deadline_notifier/internal/infra/database"
	"deadline_notifier/internal/infra/logger"
	"deadline_notifier/internal/infra/scheduler"
	"deadline_notifier/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":     cfg.LogLevel,
		"environment":   cfg.Environment,
		"admin_id":      cfg.AdminTelegramID,
		"scan_cron":     cfg.ScanCronSpec,
		"periodic_scan": cfg.PeriodicScan(),
	}).Info("Deadline notifier starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.RunMigrations(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply database migrations")
	}
	mainLogger.Info("Database connection established and migrations applied.")

	// Repositories
	userRepo := idb.NewPostgresUserRepository(db)
	eventRepo := idb.NewPostgresEventRepository(db)
	prefRepo := idb.NewPostgresPreferenceRepository(db)
	var dismissalRepo notification.DismissalRepository = idb.NewPostgresDismissalRepository(db)

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			mainLogger.WithError(err).Warn("Redis unavailable, dismissals are read from Postgres only")
		} else {
			defer rdb.Close()
			dismissalRepo = cache.NewCachedDismissalRepository(dismissalRepo, rdb, cfg.DismissalCacheTTL, logger.Component("dismissal_cache"))
			mainLogger.WithField("addr", cfg.RedisAddr).Info("Dismissal cache enabled.")
		}
	}

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	// Alerts
	var channel app.AlertChannel = alert.NopChannel{}
	if cfg.TerminalAlerts {
		channel = alert.NewTerminalChannel(os.Stdout, true)
	}
	dispatcher := app.NewDispatcher(telegram.NewAlertPresenter(telegram.NewTelebotAdapter(bot)), channel, logger.Component("dispatcher"))
	mainLogger.WithField("permission", dispatcher.RequestPermission(ctx)).Info("Native notification permission resolved.")

	// Services
	notificationService := app.NewNotificationServiceImpl(
		userRepo, eventRepo, prefRepo, dismissalRepo, dispatcher, logger.Get().WithField("app", "notifier"),
		app.WithDefaultLocation(cfg.Location()),
		app.WithWriteRetry(cfg.WriteRetryAttempts, 200*time.Millisecond),
	)
	preferenceService := app.NewPreferenceService(prefRepo)
	adminService := app.NewAdminService(userRepo, prefRepo, cfg.AdminTelegramID)

	// Handlers
	handlerLogger := logger.Component("telegram")
	settings := telegram.NewSettingsHandler(userRepo, preferenceService)
	alerts := telegram.NewAlertActionHandler(userRepo, notificationService, handlerLogger)
	telegram.RegisterBotCommands(ctx, bot, cfg, userRepo, settings, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, handlerLogger)
	telegram.RegisterCallbackHandlers(ctx, bot, alerts, settings, handlerLogger)
	mainLogger.Info("Telegram handlers registered.")

	// Scheduler
	scanScheduler := scheduler.NewScanScheduler(notificationService, logger.Get().WithField("app", "notifier"), cfg.ScanCronSpec, cfg.ScanSettleDelay, cfg.ScanTimeout)
	if err := scanScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scan scheduler")
	}

	// Metrics
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("Metrics server failed")
			}
		}()
		mainLogger.WithField("addr", cfg.MetricsAddr).Info("Metrics endpoint listening.")
	}

	mainLogger.Info("Application setup complete. Bot and scheduler are running.")
	go bot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	scanScheduler.Stop()
	bot.Stop()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Metrics server did not shut down cleanly")
		}
		shutdownCancel()
	}
	cancel()
	mainLogger.Info("Application shut down gracefully.")
}
