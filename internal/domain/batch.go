package domain

import "time"

// Record is an opaque key-value payload supplied by the host pipeline.
// The core never mutates a record.
type Record map[string]any

// Empty reports whether the record is absent or has no fields.
// Empty records are skipped without a delivery attempt.
func (r Record) Empty() bool {
	return len(r) == 0
}

// Entry pairs a record with the timestamp the host assigned to it.
type Entry struct {
	Time   time.Time
	Record Record
}

// Batch is an ordered collection of entries delivered in one emission cycle.
// Order is the host's order and is preserved during processing.
type Batch []Entry

// Size returns the number of entries in the batch, including empty ones.
func (b Batch) Size() int {
	return len(b)
}

// BatchResult tallies what happened to each entry of a processed batch.
// It is informational only; the host always treats the batch as handled.
type BatchResult struct {
	Delivered int
	Failed    int
	Skipped   int
}

// Attempted returns the number of entries that reached the delivery stage.
func (r BatchResult) Attempted() int {
	return r.Delivered + r.Failed
}
