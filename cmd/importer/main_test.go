package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingdash/server/config"
	"housingdash/server/internal/database"
)

const sampleCSV = "../../internal/dataset/testdata/melb_sample.csv"

func testConfig(dbPath string) *config.Config {
	cfg := &config.Config{}
	cfg.Data.CSVPath = sampleCSV
	cfg.Data.DBPath = dbPath
	cfg.BatchProcessing.MaxBatchSize = 4
	cfg.BatchProcessing.QueueSize = 4
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 1
	return cfg
}

func TestRunImportsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "melb.db")
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	require.NoError(t, run(context.Background(), testConfig(path), logger))

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()
	count, err := db.CountRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	// A second import over the same file upserts instead of duplicating
	require.NoError(t, run(context.Background(), testConfig(path), logger))
	count, err = db.CountRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestRunMissingCSV(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "melb.db"))
	cfg.Data.CSVPath = filepath.Join(t.TempDir(), "missing.csv")
	assert.Error(t, run(context.Background(), cfg, logrus.New()))
}
