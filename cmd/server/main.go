package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/api"
	"github.com/virshi/ai-visibility/internal/chat"
	"github.com/virshi/ai-visibility/internal/config"
	"github.com/virshi/ai-visibility/internal/recommendations"
	"github.com/virshi/ai-visibility/internal/reports"
	"github.com/virshi/ai-visibility/internal/scans"
	"github.com/virshi/ai-visibility/internal/scheduler"
	"github.com/virshi/ai-visibility/internal/storage"
	"github.com/virshi/ai-visibility/internal/store"
	"github.com/virshi/ai-visibility/internal/webhooks"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting AI Visibility service")

	// The table store is the one dependency the service cannot run without.
	client := store.NewClient(cfg.StoreURL, cfg.StoreKey)
	tableStore := store.New(client)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := tableStore.Ping(ctx); err != nil {
		cancel()
		logrus.Fatalf("Table store unreachable: %v", err)
	}
	cancel()

	hooks := webhooks.NewClient(cfg)
	scanService := scans.NewService(tableStore, hooks, cfg.ScanConcurrency)

	// Report archive is optional.
	var archive storage.ArchiveInterface
	if cfg.StorageAccount != "" {
		archive, err = storage.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Errorf("Report archive unavailable, continuing without it: %v", err)
			archive = nil
		}
	}

	reportService := reports.NewService(tableStore, cfg, archive)
	recoService := recommendations.NewService(tableStore, hooks)
	chatService := chat.NewService(tableStore, hooks)

	if cfg.EnableAutoScan {
		schedulerService, err := scheduler.NewService(cfg, tableStore, scanService)
		if err != nil {
			logrus.Fatalf("Failed to initialize scheduler: %v", err)
		}
		if err := schedulerService.Start(); err != nil {
			logrus.Fatalf("Failed to start scheduler: %v", err)
		}
		defer schedulerService.Stop()
	} else {
		logrus.Info("Auto-scan disabled")
	}

	apiServer := api.NewServer(cfg, tableStore, client, scanService, reportService, recoService, chatService, hooks)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
