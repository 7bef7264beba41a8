package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"launch-dashboard/internal/config"
	"launch-dashboard/internal/database"
	"launch-dashboard/internal/logging"
	"launch-dashboard/internal/server"
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

	var db database.Service
	if cfg.DataSource == config.SourcePostgres {
		db, err = database.New(cfg.DB, logger)
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			logger.Fatal("migrate database", zap.Error(err))
		}
	}

	// Nothing is served unless the whole data set loads.
	store, err := server.LoadRecordSet(cfg, db)
	if err != nil {
		logger.Fatal("load launch records", zap.String("source", cfg.DataSource), zap.Error(err))
	}

	srv, err := server.NewServer(cfg, store, db, logger)
	if err != nil {
		logger.Fatal("create server", zap.Error(err))
	}

	// Create a listener on the desired address
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Fatal("create listener", zap.String("addr", srv.Addr), zap.Error(err))
	}

	// Channel to receive errors from the server
	errChan := make(chan error, 1)

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for an interrupt or server error
	select {
	case err := <-errChan:
		logger.Fatal("server error", zap.Error(err))
	case sig := <-stop:
		logger.Info("initiating graceful shutdown", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Fatal("could not gracefully shut down the server", zap.Error(err))
		}

		logger.Info("server gracefully stopped")
	}
}
