package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradebridge/internal/config"
	cronrunner "tradebridge/internal/cron"
	"tradebridge/internal/db"
	"tradebridge/internal/engine"
	"tradebridge/internal/handler"
	"tradebridge/internal/logger"
	"tradebridge/internal/notify"
	gormrepository "tradebridge/internal/repository/gorm"
	"tradebridge/internal/service"
	signalnorm "tradebridge/internal/signal"
	"tradebridge/internal/stream"
)

func main() {
	cfgPath := os.Getenv("TB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	notifyHTTP := &http.Client{Timeout: cfg.Notify.Timeout}
	telegram := &notify.TelegramSender{HTTP: notifyHTTP}
	dispatcher := &notify.Dispatcher{
		Telegram: telegram,
		Forward:  &notify.WebhookForwarder{HTTP: notifyHTTP},
		Logger:   logger,
		Timeout:  cfg.Notify.Timeout,
	}

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = &stream.Hub{Buffer: cfg.Stream.Buffer}
	}

	normalizer := &signalnorm.Normalizer{}
	processor := &engine.Processor{
		Repo:   store,
		Logger: logger,
		Notify: dispatcher,
	}
	if hub != nil {
		processor.Events = hub
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	webhookHandler := &handler.WebhookHandler{
		Processor:  processor,
		Normalizer: normalizer,
		Logger:     logger,
	}
	webhookHandler.Register(router)
	strategyHandler := &handler.StrategyHandler{
		Repo:       store,
		Processor:  processor,
		Normalizer: normalizer,
		Logger:     logger,
	}
	strategyHandler.Register(router)
	signalLogHandler := &handler.SignalLogHandler{Repo: store}
	signalLogHandler.Register(router)
	if hub != nil {
		streamHandler := &handler.StreamHandler{Hub: hub, Logger: logger}
		streamHandler.Register(router)
	}

	// Dashboard assets, served for any route the API does not claim.
	if dir := strings.TrimSpace(cfg.Server.StaticDir); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			router.NoRoute(gin.WrapH(http.FileServer(http.Dir(dir))))
			logger.Info("serving dashboard", zap.String("dir", dir))
		}
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)

		retention := cfg.Cron.SignalLogRetention
		if retention > 0 {
			_, err := cronRunner.Add("signal_log_cleanup", cfg.Cron.SignalLogCleanup, func(ctx context.Context) {
				n, err := store.DeleteSignalLogsBefore(ctx, time.Now().Add(-retention))
				if err != nil {
					logger.Warn("signal log cleanup failed", zap.Error(err))
					return
				}
				if n > 0 {
					logger.Info("trimmed signal log", zap.Int64("rows", n))
				}
			})
			if err != nil {
				logger.Warn("cron register signal log cleanup failed", zap.Error(err))
			}
		}

		if cfg.Cron.SummaryEnabled {
			summary := &service.SummaryService{
				Repo:     store,
				Telegram: telegram,
				Logger:   logger,
			}
			_, err := cronRunner.Add("daily_summary", cfg.Cron.SummarySpec, func(ctx context.Context) {
				if err := summary.RunOnce(ctx); err != nil {
					logger.Warn("daily summary failed", zap.Error(err))
				}
			})
			if err != nil {
				logger.Warn("cron register daily summary failed", zap.Error(err))
			}
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
