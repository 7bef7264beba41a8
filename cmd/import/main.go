// Command import loads the launch CSV into the Postgres launch_records
// table, replacing what is there.
package main

import (
	"log"

	"go.uber.org/zap"

	"launch-dashboard/internal/config"
	"launch-dashboard/internal/database"
	"launch-dashboard/internal/launches"
	"launch-dashboard/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	store, err := launches.Load(cfg.DataPath)
	if err != nil {
		logger.Fatal("load launch records", zap.Error(err))
	}

	db, err := database.New(cfg.DB, logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}
	if err := db.InsertLaunchRecords(store.Records()); err != nil {
		logger.Fatal("import launch records", zap.Error(err))
	}

	logger.Info("import complete", zap.String("path", cfg.DataPath), zap.Int("records", store.Len()))
}
