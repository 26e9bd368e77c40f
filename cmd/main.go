package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anurajthakur333/backend/cmd/api"
	"github.com/anurajthakur333/backend/cmd/config"
	"github.com/anurajthakur333/backend/cmd/logging"
	"github.com/anurajthakur333/backend/cmd/metrics"
	"github.com/anurajthakur333/backend/cmd/models"
	"github.com/anurajthakur333/backend/cmd/worker"
	"github.com/anurajthakur333/backend/db"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			logrus.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	startServer()
}

func runMigrations() {
	cfg := config.Load()
	logging.Setup(cfg.Env)

	DB, err := db.NewPSQLStorage(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
	}()
	logrus.Info("Connected to the database for migrations")

	if err := db.Migrate(DB); err != nil {
		logrus.Fatalf("Migration error: %v", err)
	}
	logrus.Info("Migrations completed successfully")
}

func startServer() {
	cfg := config.Load()
	logging.Setup(cfg.Env)
	metrics.Init()

	DB, err := db.NewPSQLStorage(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Database initialization error: %v", err)
	}
	logrus.Info("Connected to the database")

	pool := worker.NewPool(4)

	server := api.NewApiServer(":"+cfg.Port, DB, cfg, pool)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server error: %v", err)
		}
	}()
	logrus.Infof("Server running on port %s", cfg.Port)

	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown")
	}

	// Let queued cascade deletes finish before the pool goes away.
	pool.Stop()

	if sqlDB, err := DB.DB(); err == nil {
		sqlDB.Close()
	}
	logrus.Info("Database connection closed")
}

func runDatabaseClear() {
	cfg := config.Load()
	logging.Setup(cfg.Env)

	DB, err := db.NewPSQLStorage(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
	}()

	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		logrus.Info("Database clearing cancelled.")
		return
	}

	if err := DB.Migrator().DropTable(&models.Transaction{}); err != nil {
		logrus.Fatalf("Error dropping transactions table: %v", err)
	}

	logrus.Info("Database cleared successfully")
}
