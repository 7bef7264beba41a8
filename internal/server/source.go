package server

import (
	"errors"
	"fmt"

	"launch-dashboard/internal/config"
	"launch-dashboard/internal/database"
	"launch-dashboard/internal/launches"
)

// LoadRecordSet reads the launch records from the configured source.
func LoadRecordSet(cfg config.Config, db database.Service) (*launches.RecordSet, error) {
	if cfg.DataSource != config.SourcePostgres {
		return launches.Load(cfg.DataPath)
	}

	if db == nil {
		return nil, errors.New("postgres data source selected without a database")
	}
	records, err := db.GetAllLaunchRecords()
	if err != nil {
		return nil, fmt.Errorf("read launch records: %w", err)
	}
	return launches.New(records)
}
