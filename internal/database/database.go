package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	// PostgreSQL driver
	_ "github.com/jackc/pgx/v5/stdlib"

	// Migration driver
	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"launch-dashboard/internal/config"
	"launch-dashboard/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	// Migrate applies any pending schema migrations.
	Migrate() error

	GetAllLaunchRecords() ([]models.LaunchRecord, error)
	InsertLaunchRecords(records []models.LaunchRecord) error
}

type service struct {
	db     *sql.DB
	url    string
	name   string
	logger *zap.Logger
}

// New opens a connection pool for cfg. The connection is verified lazily,
// on the first query or Health call.
func New(cfg config.Database, logger *zap.Logger) (Service, error) {
	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &service{db: db, url: cfg.URL(), name: cfg.Name, logger: logger}, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	// Ping the database
	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.Warn("database ping failed", zap.Error(err))
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	s.logger.Info("disconnected from database", zap.String("database", s.name))
	return s.db.Close()
}

func (s *service) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, s.url)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	s.logger.Info("database schema ready", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func (s *service) GetAllLaunchRecords() ([]models.LaunchRecord, error) {
	query := `
		SELECT flight_number, launch_site, class, payload_mass_kg, booster_version, booster_version_category
		FROM launch_records
		ORDER BY position
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.LaunchRecord
	for rows.Next() {
		var r models.LaunchRecord
		err := rows.Scan(
			&r.FlightNumber,
			&r.LaunchSite,
			&r.Class,
			&r.PayloadMassKg,
			&r.BoosterVersion,
			&r.BoosterVersionCategory,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// InsertLaunchRecords replaces the table contents with records, keeping
// their order, in one transaction.
func (s *service) InsertLaunchRecords(records []models.LaunchRecord) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM launch_records`); err != nil {
		return fmt.Errorf("clear launch records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO launch_records (position, flight_number, launch_site, class, payload_mass_kg, booster_version, booster_version_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		_, err = stmt.Exec(
			i,
			r.FlightNumber,
			r.LaunchSite,
			r.Class,
			r.PayloadMassKg,
			r.BoosterVersion,
			r.BoosterVersionCategory,
		)
		if err != nil {
			return fmt.Errorf("insert flight %d: %w", r.FlightNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("imported launch records", zap.Int("count", len(records)))
	return nil
}
