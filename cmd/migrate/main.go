package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/orderdesk/backend/internal/infrastructure/config"
	"github.com/orderdesk/backend/internal/infrastructure/logger"
	"github.com/orderdesk/backend/internal/infrastructure/persistence"
	"github.com/orderdesk/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var (
		logLevel string
		dryRun   bool
	)
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&dryRun, "dry-run", false, "List the tables that would be migrated without touching the database")
	flag.Parse()

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	tables := []interface{}{
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.BillModel{},
		&models.SheetConfigModel{},
	}

	if dryRun {
		for _, t := range tables {
			fmt.Printf("would migrate %T\n", t)
		}
		return
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	log.Info("Running schema migration", zap.Int("tables", len(tables)))
	if err := db.DB.AutoMigrate(tables...); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration completed successfully")
}
