package importer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"housingdash/server/config"
	"housingdash/server/internal/database"
	"housingdash/server/internal/dataset"
	"housingdash/server/internal/models"
	"housingdash/server/internal/processor"
	"housingdash/server/internal/queue"
)

const sampleCSV = "../dataset/testdata/melb_sample.csv"

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) GeocodeAddress(ctx context.Context, address, suburb string) (float64, float64, error) {
	args := m.Called(address, suburb)
	return args.Get(0).(float64), args.Get(1).(float64), args.Error(2)
}

// collector records every batch it is handed
type collector struct {
	mu      sync.Mutex
	batches [][]*models.Record
	fullFor int
}

func (c *collector) Push(records []*models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fullFor > 0 {
		c.fullFor--
		return queue.ErrQueueFull
	}
	c.batches = append(c.batches, records)
	return nil
}

func loadSample(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.LoadFile(sampleCSV)
	require.NoError(t, err)
	return table
}

func TestRunBatches(t *testing.T) {
	table := loadSample(t)
	c := &collector{}

	res, err := New(c, nil, 4, logrus.New()).Run(context.Background(), table.Records())
	require.NoError(t, err)

	assert.Equal(t, Result{Records: 10, Batches: 3}, res)
	require.Len(t, c.batches, 3)
	assert.Len(t, c.batches[0], 4)
	assert.Len(t, c.batches[1], 4)
	assert.Len(t, c.batches[2], 2)
	assert.Equal(t, int64(9), c.batches[2][1].ID)
}

func TestRunBacksOffWhenQueueFull(t *testing.T) {
	table := loadSample(t)
	c := &collector{fullFor: 2}

	res, err := New(c, nil, 100, nil).Run(context.Background(), table.Records())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Batches)
	assert.Len(t, c.batches, 1)
}

func TestRunStopsOnClosedQueue(t *testing.T) {
	q := queue.NewRecordQueue(1, nil)
	require.NoError(t, q.Close())

	_, err := New(q, nil, 5, nil).Run(context.Background(), loadSample(t).Records())
	assert.ErrorIs(t, err, queue.ErrQueueClosed)
}

func TestRunCancelledWhileQueueFull(t *testing.T) {
	c := &collector{fullFor: 1 << 30}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(c, nil, 5, nil).Run(ctx, loadSample(t).Records())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunGeocodesMissingCoordinates(t *testing.T) {
	table := loadSample(t)
	records := table.Records()

	geocoder := &MockGeocoder{}
	geocoder.On("GeocodeAddress", "100 Harold St, Unit 4", "Albert Park").
		Return(-37.845, 144.955, nil).Once()

	c := &collector{}
	res, err := New(c, geocoder, 100, nil).Run(context.Background(), records)
	require.NoError(t, err)
	geocoder.AssertExpectations(t)

	assert.Equal(t, 1, res.Geocoded)
	assert.Equal(t, 0, res.GeocodeMissing)

	imported := c.batches[0][7]
	require.True(t, imported.HasCoordinates())
	assert.Equal(t, -37.845, *imported.Latitude)

	// The loaded table is untouched
	original, ok := table.ByID(7)
	require.True(t, ok)
	assert.False(t, original.HasCoordinates())
}

func TestRunKeepsRecordWhenGeocodingFails(t *testing.T) {
	geocoder := &MockGeocoder{}
	geocoder.On("GeocodeAddress", mock.Anything, mock.Anything).Return(0.0, 0.0, errors.New("no results"))

	c := &collector{}
	res, err := New(c, geocoder, 100, nil).Run(context.Background(), loadSample(t).Records())
	require.NoError(t, err)

	assert.Equal(t, 10, res.Records)
	assert.Equal(t, 1, res.GeocodeMissing)
	assert.False(t, c.batches[0][7].HasCoordinates())
}

func TestImportRoundTrip(t *testing.T) {
	table := loadSample(t)
	path := filepath.Join(t.TempDir(), "melb.db")

	store, err := database.OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(store))

	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 1

	logger := logrus.New()
	q := queue.NewRecordQueue(2, logger)
	batchProcessor := processor.NewBatchProcessor(store, q, cfg, logger)
	batchProcessor.Start()

	res, err := New(q, nil, 3, logger).Run(context.Background(), table.Records())
	require.NoError(t, err)
	batchProcessor.Stop()

	assert.Equal(t, 4, res.Batches)
	assert.Equal(t, processor.Stats{Processed: 10}, batchProcessor.Stats())

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	records, err := db.LoadRecords(context.Background())
	require.NoError(t, err)
	reloaded, err := dataset.NewTable(records)
	require.NoError(t, err)

	assert.Equal(t, table.Len(), reloaded.Len())
	assert.Equal(t, table.Years(), reloaded.Years())
	assert.Equal(t, table.Aggregates(), reloaded.Aggregates())
}
