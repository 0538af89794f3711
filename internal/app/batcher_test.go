package app

import (
	"testing"
	"time"

	"github.com/bft-labs/certship/internal/domain"
)

func TestBatcher_SizeTrigger(t *testing.T) {
	b := NewBatcher(3, 0)

	for i := 0; i < 2; i++ {
		if b.Add(entry(domain.Record{"i": i})) {
			t.Fatalf("Add() #%d reported full", i)
		}
	}
	if !b.Add(entry(domain.Record{"i": 2})) {
		t.Fatal("Add() #2 did not report full")
	}

	batch := b.Take()
	if batch.Size() != 3 {
		t.Errorf("Take() size = %d, want 3", batch.Size())
	}
	if b.HasPending() {
		t.Error("HasPending() after Take() = true")
	}
	if batch[0].Record["i"] != 0 || batch[2].Record["i"] != 2 {
		t.Errorf("Take() order = %v", batch)
	}
}

func TestBatcher_TimeTrigger(t *testing.T) {
	now := time.Unix(1700000000, 0)
	b := NewBatcher(10, time.Second)
	b.now = func() time.Time { return now }
	b.lastFlush = now

	if b.Due() {
		t.Fatal("Due() with nothing pending = true")
	}
	b.Add(entry(domain.Record{"a": 1}))
	if b.Due() {
		t.Fatal("Due() before interval = true")
	}

	now = now.Add(time.Second)
	if !b.Due() {
		t.Fatal("Due() after interval = false")
	}
	b.Take()
	b.Add(entry(domain.Record{"a": 2}))
	if b.Due() {
		t.Error("Due() right after Take() = true")
	}
}

func TestBatcher_Defaults(t *testing.T) {
	b := NewBatcher(0, 0)
	if b.maxEntries != DefaultBatchSize {
		t.Errorf("maxEntries = %d, want %d", b.maxEntries, DefaultBatchSize)
	}
	b.Add(entry(nil))
	if b.Due() {
		t.Error("Due() with time trigger disabled = true")
	}
}
