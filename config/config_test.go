package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8050, cfg.Server.Port)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DataSourceCSV, cfg.Data.Source)
	assert.Equal(t, "melb_data2.csv", cfg.Data.CSVPath)
	assert.Equal(t, 40, cfg.Charts.HistogramBins)
	assert.Equal(t, 10, cfg.Map.ZoomLevel)
	assert.Equal(t, "open-street-map", cfg.Map.Style)
	assert.InDelta(t, -37.8136, cfg.Map.CenterLat, 0.0001)
	assert.Equal(t, 100, cfg.BatchProcessing.MaxBatchSize)
	assert.Equal(t, 3, cfg.BatchProcessing.MaxRetries)
	assert.False(t, cfg.Geocoding.Enabled)
	assert.Equal(t, "127.0.0.1:8050", cfg.Addr())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("DATA_SOURCE", "sqlite")
	t.Setenv("DB_PATH", "/tmp/melb.db")
	t.Setenv("MAP_ZOOM", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DataSourceSQLite, cfg.Data.Source)
	assert.Equal(t, "/tmp/melb.db", cfg.Data.DBPath)
	assert.Equal(t, 12, cfg.Map.ZoomLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{
			name:   "Port out of range",
			mutate: func(c *Config) { c.Server.Port = 70000 },
		},
		{
			name:   "Unknown data source",
			mutate: func(c *Config) { c.Data.Source = "parquet" },
		},
		{
			name:   "Empty csv path",
			mutate: func(c *Config) { c.Data.CSVPath = "" },
		},
		{
			name:   "Zero histogram bins",
			mutate: func(c *Config) { c.Charts.HistogramBins = 0 },
		},
		{
			name:   "No processors",
			mutate: func(c *Config) { c.BatchProcessing.ProcessorCount = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestMapViewWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultMapView, MapView{}.WithDefaults())

	custom := MapView{CenterLat: -33.8688, CenterLng: 151.2093, Style: "carto-positron"}.WithDefaults()
	assert.Equal(t, -33.8688, custom.CenterLat)
	assert.Equal(t, 151.2093, custom.CenterLng)
	assert.Equal(t, "carto-positron", custom.Style)
	assert.Equal(t, 10, custom.ZoomLevel)
	assert.Equal(t, 600, custom.Height)
	assert.Equal(t, "melbourne", custom.Name)
}
