package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/caarlos0/env/v6"
)

const (
	DataSourceCSV    = "csv"
	DataSourceSQLite = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server struct {
		Host  string `env:"SERVER_HOST" envDefault:"127.0.0.1"`
		Port  int    `env:"SERVER_PORT" envDefault:"8050"`
		Debug bool   `env:"DEBUG" envDefault:"false"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Data struct {
		// Either "csv" or "sqlite"
		Source  string `env:"DATA_SOURCE" envDefault:"csv"`
		CSVPath string `env:"DATA_FILE" envDefault:"melb_data2.csv"`
		DBPath  string `env:"DB_PATH" envDefault:"database/melb.db"`
	}

	Charts struct {
		Width  int `env:"CHART_WIDTH" envDefault:"1024"`
		Height int `env:"CHART_HEIGHT" envDefault:"600"`

		// Upper bound on the number of histogram bins
		HistogramBins int `env:"CHART_HISTOGRAM_BINS" envDefault:"40"`
	}

	Map MapView

	// BatchProcessing configures the snapshot importer
	BatchProcessing struct {
		// Maximum number of records per batch
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Buffered batches in the queue
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"16"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	Geocoding struct {
		Enabled  bool   `env:"GEOCODE_ENABLED" envDefault:"false"`
		BaseURL  string `env:"GEOCODE_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
		Country  string `env:"GEOCODE_COUNTRY" envDefault:"au"`
		CacheDir string `env:"GEOCODE_CACHE_DIR"`

		// Pause between uncached lookups in milliseconds
		RequestDelay int `env:"GEOCODE_REQUEST_DELAY" envDefault:"1000"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values env parsing cannot check on its own.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	switch c.Data.Source {
	case DataSourceCSV:
		if c.Data.CSVPath == "" {
			return fmt.Errorf("%w: DATA_FILE is empty", ErrInvalidConfig)
		}
	case DataSourceSQLite:
		if c.Data.DBPath == "" {
			return fmt.Errorf("%w: DB_PATH is empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown data source %q", ErrInvalidConfig, c.Data.Source)
	}
	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return fmt.Errorf("%w: chart size %dx%d", ErrInvalidConfig, c.Charts.Width, c.Charts.Height)
	}
	if c.Charts.HistogramBins <= 0 {
		return fmt.Errorf("%w: histogram bins must be positive", ErrInvalidConfig)
	}
	if c.BatchProcessing.MaxBatchSize <= 0 || c.BatchProcessing.ProcessorCount <= 0 || c.BatchProcessing.QueueSize <= 0 {
		return fmt.Errorf("%w: batch sizes and processor count must be positive", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
