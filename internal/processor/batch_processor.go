package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"housingdash/server/config"
	"housingdash/server/internal/database"
	"housingdash/server/internal/models"
	"housingdash/server/internal/queue"
)

// Store is the part of *gorm.DB the processor needs
type Store interface {
	Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error
}

// Stats counts records, not batches.
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// BatchProcessor handles the processing of record batches
type BatchProcessor struct {
	db     Store
	logger *logrus.Logger
	config *config.Config
	queue  *queue.RecordQueue
	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once

	processed atomic.Int64
	failed    atomic.Int64
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Store, queue *queue.RecordQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue and starts its workers
func (p *BatchProcessor) Start() {
	p.start.Do(func() {
		p.queue.Subscribe(p.processBatch)
		p.queue.Start(p.config.BatchProcessing.ProcessorCount)
	})
}

// Stop waits for queued batches to be written, then releases the processor.
func (p *BatchProcessor) Stop() {
	if err := p.queue.Close(); err != nil {
		p.logger.WithError(err).Error("Failed to close queue")
	}
	p.cancel()
}

// Abort cancels pending retries before stopping.
func (p *BatchProcessor) Abort() {
	p.cancel()
	p.Stop()
}

func (p *BatchProcessor) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

// processBatch upserts a single batch in a transaction, retrying on failure
func (p *BatchProcessor) processBatch(batch []*models.Record) error {
	maxRetries := p.config.BatchProcessing.MaxRetries
	delay := time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, maxRetries)
			select {
			case <-p.ctx.Done():
				p.failed.Add(int64(len(batch)))
				return fmt.Errorf("batch processing cancelled: %w", p.ctx.Err())
			case <-time.After(delay):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertRecords(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert records batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.processed.Add(int64(len(batch)))
			p.logger.WithField("batch_size", len(batch)).Debug("Processed batch")
			return nil
		}

		p.logger.WithError(err).Warn("Batch processing failed")
	}

	p.failed.Add(int64(len(batch)))
	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}
