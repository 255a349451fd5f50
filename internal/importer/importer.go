// Package importer copies a loaded snapshot into SQLite through the batch
// queue, filling in missing coordinates on the way when a geocoder is set.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"housingdash/server/internal/models"
	"housingdash/server/internal/queue"
)

const pushBackoff = 50 * time.Millisecond

// Geocoder resolves an address within a suburb to latitude and longitude.
type Geocoder interface {
	GeocodeAddress(ctx context.Context, address, suburb string) (float64, float64, error)
}

// Pusher accepts record batches without blocking.
type Pusher interface {
	Push(records []*models.Record) error
}

type Result struct {
	Records        int `json:"records"`
	Batches        int `json:"batches"`
	Geocoded       int `json:"geocoded"`
	GeocodeMissing int `json:"geocode_missing"`
}

type Importer struct {
	queue     Pusher
	geocoder  Geocoder
	batchSize int
	logger    *logrus.Logger
}

// New returns an importer. geocoder may be nil.
func New(q Pusher, geocoder Geocoder, batchSize int, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Importer{
		queue:     q,
		geocoder:  geocoder,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run pushes records in batches, waiting whenever the queue is full.
// Records are copied; the caller's slice is not modified.
func (im *Importer) Run(ctx context.Context, records []models.Record) (Result, error) {
	var res Result
	for start := 0; start < len(records); start += im.batchSize {
		end := min(start+im.batchSize, len(records))

		batch := make([]*models.Record, 0, end-start)
		for i := start; i < end; i++ {
			r := records[i]
			if im.geocoder != nil && !r.HasCoordinates() && r.Address != "" {
				if err := im.geocode(ctx, &r); err != nil {
					if ctx.Err() != nil {
						return res, ctx.Err()
					}
					res.GeocodeMissing++
				} else {
					res.Geocoded++
				}
			}
			batch = append(batch, &r)
		}

		if err := im.push(ctx, batch); err != nil {
			return res, err
		}
		res.Batches++
		res.Records += len(batch)

		im.logger.WithFields(logrus.Fields{
			"pushed": res.Records,
			"total":  len(records),
		}).Debug("Import progress")
	}

	im.logger.WithFields(logrus.Fields{
		"records":         res.Records,
		"batches":         res.Batches,
		"geocoded":        res.Geocoded,
		"geocode_missing": res.GeocodeMissing,
	}).Info("Queued snapshot for import")
	return res, nil
}

func (im *Importer) geocode(ctx context.Context, r *models.Record) error {
	lat, lon, err := im.geocoder.GeocodeAddress(ctx, r.Address, r.Suburb)
	if err != nil {
		im.logger.WithError(err).WithField("id", r.ID).Warn("Failed to geocode record")
		return err
	}
	r.Latitude = &lat
	r.Longitude = &lon
	return nil
}

func (im *Importer) push(ctx context.Context, batch []*models.Record) error {
	for attempt := 1; ; attempt++ {
		err := im.queue.Push(batch)
		if err == nil {
			return nil
		}
		if !errors.Is(err, queue.ErrQueueFull) {
			return fmt.Errorf("failed to queue batch: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(min(attempt, 10)) * pushBackoff):
		}
	}
}
