package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingdash/server/internal/models"
)

func TestNewRecordQueue(t *testing.T) {
	logger := logrus.New()
	q := NewRecordQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestRecordQueue_Push(t *testing.T) {
	q := NewRecordQueue(2, logrus.New())

	// Test successful push
	records := []*models.Record{{ID: 1}}
	err := q.Push(records)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	assert.NoError(t, q.Push([]*models.Record{{ID: 2}}))
	err = q.Push(records)
	assert.ErrorIs(t, err, ErrQueueFull)

	// Test closed queue
	require.NoError(t, q.Close())
	err = q.Push(records)
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestRecordQueue_Subscribe(t *testing.T) {
	q := NewRecordQueue(10, logrus.New())

	var processed []*models.Record
	var mu sync.Mutex
	q.Subscribe(func(records []*models.Record) error {
		mu.Lock()
		processed = append(processed, records...)
		mu.Unlock()
		return nil
	})

	q.Start(1)

	err := q.Push([]*models.Record{{ID: 1, Address: "85 Turner St"}, {ID: 2, Address: "25 Bloomburg St"}})
	assert.NoError(t, err)

	require.NoError(t, q.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, processed, 2)
	assert.Equal(t, "85 Turner St", processed[0].Address)
	assert.Equal(t, "25 Bloomburg St", processed[1].Address)
}

func TestRecordQueue_Close(t *testing.T) {
	q := NewRecordQueue(10, logrus.New())

	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Second close is a no-op
	err = q.Close()
	assert.NoError(t, err)

	// Start after close does nothing
	q.Start(2)
}

func TestRecordQueue_CloseDrainsPending(t *testing.T) {
	q := NewRecordQueue(8, logrus.New())

	release := make(chan struct{})
	var mu sync.Mutex
	seen := 0
	q.Subscribe(func(records []*models.Record) error {
		<-release
		mu.Lock()
		seen += len(records)
		mu.Unlock()
		return nil
	})
	q.Start(2)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push([]*models.Record{{ID: int64(i)}}))
	}

	done := make(chan struct{})
	go func() {
		_ = q.Close()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Close returned before pending batches were handled")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, seen)
}

func TestRecordQueue_ProcessBatch(t *testing.T) {
	q := NewRecordQueue(10, logrus.New())

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	// Every handler sees the batch, even after one fails
	for i := 0; i < 3; i++ {
		fail := i == 0
		wg.Add(1)
		q.Subscribe(func(records []*models.Record) error {
			defer wg.Done()
			mu.Lock()
			processedBatches++
			mu.Unlock()
			if fail {
				return errors.New("boom")
			}
			return nil
		})
	}

	q.Start(1)

	err := q.Push([]*models.Record{{ID: 1}})
	assert.NoError(t, err)

	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
	require.NoError(t, q.Close())
}
