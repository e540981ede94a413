package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"ad-reporting/internal/client"
	"ad-reporting/internal/config"
	"ad-reporting/internal/export"
	"ad-reporting/internal/handlers"
	"ad-reporting/internal/loader"
	"ad-reporting/internal/metrics"
	"ad-reporting/internal/middleware"
	"ad-reporting/internal/models"
	"ad-reporting/internal/registry"
	"ad-reporting/internal/storage"
	"ad-reporting/internal/telemetry"
	"ad-reporting/internal/transformer"
)

func main() {
	// Setup logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.WithField("data_dir", cfg.DataDir).Info("Starting Ad Reporting Service")

	// Initialize components
	observer := telemetry.Observer{}
	tableLoader := loader.New(cfg.DataDir, transformer.New(), logger, observer)
	store := storage.NewMemoryStore(tableLoader.Load, observer)
	calculator := metrics.NewCalculator()
	httpClient := client.NewHTTPClient(cfg, logger)
	exporter := export.NewExporter(cfg.SinkSecret, httpClient, logger)

	// Missing or malformed sources are fatal at startup
	warm := []models.ReportType{registry.Resolve(cfg.DefaultReport)}
	if cfg.Preload {
		warm = registry.List()
	}
	if err := store.Preload(context.Background(), warm...); err != nil {
		logger.WithError(err).Fatal("Failed to load report data")
	}

	handler := handlers.New(cfg, store, calculator, exporter, logger)

	// Setup Gin router
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger), middleware.Metrics())

	handler.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
