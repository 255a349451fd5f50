package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"housingdash/server/config"
	"housingdash/server/internal/api"
	"housingdash/server/internal/dashboard"
	"housingdash/server/internal/database"
	"housingdash/server/internal/dataset"
)

var (
	flagHost  string
	flagPort  int
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Serve the Melbourne housing dashboard API",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		f := cmd.Flags()
		if f.Changed("host") {
			cfg.Server.Host = flagHost
		}
		if f.Changed("port") {
			cfg.Server.Port = flagPort
		}
		if f.Changed("debug") {
			cfg.Server.Debug = flagDebug
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return run(cmd.Context(), cfg, newLogger(cfg.Server.Debug))
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagHost, "host", "", "listen host (overrides SERVER_HOST)")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "listen port (overrides SERVER_PORT)")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging and gin debug mode")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if err := dashboard.Validate(dashboard.Callbacks); err != nil {
		logger.WithError(err).Error("Invalid callback graph")
		return err
	}

	table, err := loadTable(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to load dataset")
		return err
	}
	from, to := table.YearRange()
	logger.WithFields(logrus.Fields{
		"records": table.Len(),
		"from":    from,
		"to":      to,
	}).Info("Dataset loaded")

	router := api.NewRouter(cfg, logger)
	api.SetupRoutes(router, api.NewHandler(table, cfg, logger))
	api.SetupSuburbRoutes(router, api.NewSuburbHandler(table, logger))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server failed")
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// loadTable reads the snapshot from the configured source.
func loadTable(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*dataset.Table, error) {
	switch cfg.Data.Source {
	case config.DataSourceSQLite:
		logger.Infof("Using database at: %s", cfg.Data.DBPath)
		db, err := database.NewDatabase(cfg.Data.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		records, err := db.LoadRecords(ctx)
		if err != nil {
			return nil, err
		}
		return dataset.NewTable(records)
	case config.DataSourceCSV:
		logger.Infof("Using data file at: %s", cfg.Data.CSVPath)
		return dataset.LoadFile(cfg.Data.CSVPath)
	default:
		return nil, fmt.Errorf("%w: unknown data source %q", config.ErrInvalidConfig, cfg.Data.Source)
	}
}
