package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appordering "github.com/orderdesk/backend/internal/application/ordering"
	appsheetfeed "github.com/orderdesk/backend/internal/application/sheetfeed"
	"github.com/orderdesk/backend/internal/infrastructure/config"
	"github.com/orderdesk/backend/internal/infrastructure/event"
	"github.com/orderdesk/backend/internal/infrastructure/feed"
	"github.com/orderdesk/backend/internal/infrastructure/logger"
	"github.com/orderdesk/backend/internal/infrastructure/notify"
	"github.com/orderdesk/backend/internal/infrastructure/persistence"
	"github.com/orderdesk/backend/internal/infrastructure/printing"
	"github.com/orderdesk/backend/internal/infrastructure/scheduler"
	"github.com/orderdesk/backend/internal/interfaces/http/handler"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
	"github.com/orderdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OrderDesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	configRepo := persistence.NewGormSheetConfigRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Notification hub, optionally bridged across instances via redis
	hub := notify.NewHub(
		notify.WithHubLogger(log),
		notify.WithHubBufferSize(cfg.Notify.SubscriberBuffer),
		notify.WithHubMaxSubscribers(cfg.Notify.MaxSubscribers),
	)
	defer hub.Close()

	var broadcaster notify.Broadcaster = hub
	var redisBroadcaster *notify.RedisBroadcaster
	if cfg.Notify.RedisEnabled {
		redisBroadcaster, err = notify.NewRedisBroadcaster(
			cfg.Redis.Addr(),
			cfg.Redis.Password,
			cfg.Redis.DB,
			hub,
			notify.WithRedisLogger(log),
			notify.WithRedisChannel(cfg.Notify.RedisChannel),
		)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		broadcaster = redisBroadcaster
		go func() {
			if err := redisBroadcaster.Run(rootCtx); err != nil && rootCtx.Err() == nil {
				log.Error("Redis notification bridge stopped", zap.Error(err))
			}
		}()
		defer func() {
			if err := redisBroadcaster.Close(); err != nil {
				log.Error("Error closing redis bridge", zap.Error(err))
			}
		}()
		log.Info("Redis notification bridge enabled",
			zap.String("channel", cfg.Notify.RedisChannel))
	}

	// Bridge domain events into the notification stream
	eventBus.Subscribe(notify.NewOrderEventBridge(broadcaster, log))

	// External feed and print transport
	feedReader := feed.NewSheetsCSVReader(feed.WithReaderLogger(log))
	transport := printing.NewSimulatedTransport(
		printing.WithLatency(cfg.Print.SimulateLatency),
		printing.WithFailure(cfg.Print.SimulateFailure),
		printing.WithTransportLogger(log),
	)

	// Application services
	orderService := appordering.NewOrderService(orderRepo, eventBus, log)
	printService := appordering.NewPrintService(
		orderRepo,
		billRepo,
		printing.NewReceiptRenderer(),
		transport,
		eventBus,
		log,
		appordering.WithPrintTimeout(cfg.Print.Timeout),
		appordering.WithDefaultPrinter(cfg.Print.DefaultPrinter),
	)
	syncService := appsheetfeed.NewSyncService(configRepo, orderRepo, feedReader, eventBus, log)
	configService := appsheetfeed.NewConfigService(configRepo, feedReader, log)

	// Background feed sync
	syncScheduler, err := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
		Enabled:    cfg.Sync.Enabled,
		Interval:   cfg.Sync.Interval,
		RunTimeout: cfg.Sync.FetchTimeout,
	}, syncService, log)
	if err != nil {
		log.Fatal("Invalid sync scheduler configuration", zap.Error(err))
	}
	if err := syncScheduler.Start(rootCtx); err != nil {
		log.Fatal("Failed to start sync scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := syncScheduler.Stop(stopCtx); err != nil {
			log.Error("Error stopping sync scheduler", zap.Error(err))
		}
	}()

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	systemHandler := handler.NewSystemHandler(db, hub)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewOrderHandler(orderService, log)).
		Register(handler.NewPrintHandler(printService, log)).
		Register(handler.NewSyncHandler(syncService, configService, log)).
		Register(handler.NewStreamHandler(hub,
			handler.WithStreamLogger(log),
			handler.WithStreamHeartbeat(cfg.Notify.Heartbeat)))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
