package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"launch-dashboard/internal/charts"
	"launch-dashboard/internal/config"
	"launch-dashboard/internal/dashboard"
	"launch-dashboard/internal/database"
	"launch-dashboard/internal/launches"
	"launch-dashboard/internal/metrics"
)

type Server struct {
	cfg      config.Config
	boundary charts.Boundary
	store    *launches.RecordSet
	db       database.Service
	layout   dashboard.Layout
	registry *dashboard.Registry
	limiter  *visitorLimiter
	logger   *zap.Logger
}

// NewServer wires the dashboard for store and returns the HTTP server to
// run it. db may be nil when records come from a file.
func NewServer(cfg config.Config, store *launches.RecordSet, db database.Service, logger *zap.Logger) (*http.Server, error) {
	s, err := newServer(cfg, store, db, logger)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, nil
}

func newServer(cfg config.Config, store *launches.RecordSet, db database.Service, logger *zap.Logger) (*Server, error) {
	boundary, err := charts.ParseBoundary(cfg.PayloadBoundary)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYLOAD_BOUNDARY: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		boundary: boundary,
		store:    store,
		db:       db,
		layout:   dashboard.NewLayout(cfg.Title, store),
		registry: dashboard.NewRegistry(),
		limiter:  newVisitorLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		logger:   logger,
	}
	if err := s.registerCallbacks(s.registry); err != nil {
		return nil, fmt.Errorf("register callbacks: %w", err)
	}

	metrics.RecordsLoaded.Set(float64(store.Len()))
	min, max := store.PayloadBounds()
	logger.Info("dashboard ready",
		zap.Int("records", store.Len()),
		zap.Strings("sites", store.DistinctSites()),
		zap.Float64("payload_min", min),
		zap.Float64("payload_max", max),
		zap.String("payload_boundary", string(s.boundary)),
	)
	return s, nil
}
