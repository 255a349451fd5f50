package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"housingdash/server/config"
	"housingdash/server/internal/database"
	"housingdash/server/internal/dataset"
	"housingdash/server/internal/geocoding"
	"housingdash/server/internal/importer"
	"housingdash/server/internal/processor"
	"housingdash/server/internal/queue"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Server.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Import failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	table, err := dataset.LoadFile(cfg.Data.CSVPath)
	if err != nil {
		return err
	}
	logger.WithField("records", table.Len()).Infof("Loaded %s", cfg.Data.CSVPath)

	if err := os.MkdirAll(filepath.Dir(cfg.Data.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	logger.Infof("Using database at: %s", cfg.Data.DBPath)
	store, err := database.OpenStore(cfg.Data.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseStore(store); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}()

	logger.Info("Running database migrations...")
	if err := database.MigrateSchema(store); err != nil {
		return err
	}

	recordQueue := queue.NewRecordQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(store, recordQueue, cfg, logger)
	batchProcessor.Start()

	var geocoder importer.Geocoder
	if cfg.Geocoding.Enabled {
		geocoder = geocoding.NewGeocoder(logger, cfg)
	}

	res, err := importer.New(recordQueue, geocoder, cfg.BatchProcessing.MaxBatchSize, logger).Run(ctx, table.Records())
	if err != nil {
		batchProcessor.Abort()
		return err
	}
	batchProcessor.Stop()

	stats := batchProcessor.Stats()
	logger.WithFields(logrus.Fields{
		"batches":   res.Batches,
		"geocoded":  res.Geocoded,
		"processed": stats.Processed,
		"failed":    stats.Failed,
	}).Info("Import finished")

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d records were not written", stats.Failed, res.Records)
	}
	return nil
}
