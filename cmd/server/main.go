package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	"github.com/storesync/backend/internal/infrastructure/scheduler"
	"github.com/storesync/backend/internal/infrastructure/woocommerce"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storesync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	instanceRepo := persistence.NewGormInstanceRepository(db.DB)
	mappingRepo := persistence.NewGormMappingRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	catalogRepo := persistence.NewGormCatalogRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Initialize storefront gateway factory and sync orchestrator
	gateways := woocommerce.NewFactory()
	orchestrator := appsync.NewOrchestrator(
		instanceRepo,
		mappingRepo,
		syncLogRepo,
		catalogRepo,
		gateways,
		txManager,
		appsync.Config{
			ChunkSize:      cfg.Sync.ChunkSize,
			TimeBudget:     cfg.Sync.TimeBudget,
			RemotePageSize: cfg.Sync.RemotePageSize,
			ImageBaseURL:   cfg.Sync.ImageBaseURL,
		},
		log,
	)

	// Start the periodic sync scheduler when enabled
	var syncScheduler *scheduler.SyncScheduler
	if cfg.Scheduler.Enabled {
		syncScheduler = scheduler.NewSyncScheduler(scheduler.Config{
			FullSyncInterval:   cfg.Scheduler.FullSyncInterval,
			StockPriceInterval: cfg.Scheduler.StockPriceInterval,
		}, orchestrator, instanceRepo, log)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		log.Info("Sync scheduler started",
			zap.Duration("full_sync_interval", cfg.Scheduler.FullSyncInterval),
			zap.Duration("stock_price_interval", cfg.Scheduler.StockPriceInterval),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router with custom middleware
	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	r := router.NewRouter(engine)
	r.Register(handler.NewInstanceHandler(instanceRepo, orchestrator)).
		Register(handler.NewSyncHandler(orchestrator, mappingRepo, syncLogRepo))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if syncScheduler != nil {
		if err := syncScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping sync scheduler", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
