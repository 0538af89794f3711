package app

import (
	"time"

	"github.com/bft-labs/certship/internal/domain"
)

// DefaultBatchSize is the number of entries grouped into one emission when
// no size is configured.
const DefaultBatchSize = 100

// Batcher groups entries read from a stream into batches, flushing on size or
// after an interval has elapsed since the last flush. It is not safe for
// concurrent use.
type Batcher struct {
	pending       domain.Batch
	maxEntries    int
	flushInterval time.Duration
	lastFlush     time.Time
	now           func() time.Time
}

// NewBatcher creates a batcher. A zero flushInterval disables the time trigger.
func NewBatcher(maxEntries int, flushInterval time.Duration) *Batcher {
	if maxEntries <= 0 {
		maxEntries = DefaultBatchSize
	}
	b := &Batcher{
		maxEntries:    maxEntries,
		flushInterval: flushInterval,
		now:           time.Now,
	}
	b.lastFlush = b.now()
	return b
}

// Add appends an entry and reports whether the batch is now full.
func (b *Batcher) Add(e domain.Entry) bool {
	b.pending = append(b.pending, e)
	return len(b.pending) >= b.maxEntries
}

// Due reports whether pending entries have waited longer than the flush interval.
func (b *Batcher) Due() bool {
	if len(b.pending) == 0 || b.flushInterval <= 0 {
		return false
	}
	return b.now().Sub(b.lastFlush) >= b.flushInterval
}

// HasPending reports whether any entries are waiting.
func (b *Batcher) HasPending() bool {
	return len(b.pending) > 0
}

// Take returns the pending entries and starts a new batch.
func (b *Batcher) Take() domain.Batch {
	batch := b.pending
	b.pending = nil
	b.lastFlush = b.now()
	return batch
}
