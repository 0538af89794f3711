package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff_Next(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 400*time.Millisecond)

	bases := []time.Duration{100, 200, 400, 400}
	for i, base := range bases {
		base *= time.Millisecond
		d := b.Next()
		lo, hi := time.Duration(float64(base)*0.8), time.Duration(float64(base)*1.2)
		if d < lo || d > hi {
			t.Errorf("step %d: Next() = %v, want within [%v, %v]", i, d, lo, hi)
		}
	}

	b.Reset()
	if d := b.Next(); d > 120*time.Millisecond {
		t.Errorf("Next() after Reset() = %v, want about 100ms", d)
	}
}

func TestBackoff_Defaults(t *testing.T) {
	b := NewBackoff(0, 0)
	if b.initial != DefaultBackoffInitial || b.max != DefaultBackoffMax {
		t.Errorf("NewBackoff(0, 0) = %+v", b)
	}
}

func TestBackoff_Wait_Canceled(t *testing.T) {
	b := NewBackoff(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
}

func TestBackoff_Wait(t *testing.T) {
	b := NewBackoff(time.Millisecond, time.Millisecond)
	if err := b.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v", err)
	}
}
