package store

import (
	"testing"
	"time"
)

func TestNewClock(t *testing.T) {
	c := NewClock()
	if c == nil {
		t.Fatal("expected non-nil clock")
	}
	if c.Offset() != 0 {
		t.Errorf("expected zero offset, got %v", c.Offset())
	}
}

func TestClockNow(t *testing.T) {
	c := NewClock()
	before := time.Now()
	now := c.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("clock.Now() outside expected range: before=%v now=%v after=%v", before, now, after)
	}
}

func TestClockAdvance(t *testing.T) {
	c := NewClock()
	c.Advance(24 * time.Hour)

	if c.Offset() != 24*time.Hour {
		t.Errorf("expected 24h offset, got %v", c.Offset())
	}

	diff := c.Now().Sub(time.Now())
	if diff < 23*time.Hour+59*time.Minute || diff > 24*time.Hour+1*time.Minute {
		t.Errorf("expected ~24h offset, got %v", diff)
	}
}

func TestClockReset(t *testing.T) {
	c := NewClock()
	c.Advance(1 * time.Hour)
	c.Advance(2 * time.Hour)
	if c.Offset() != 3*time.Hour {
		t.Errorf("expected 3h cumulative offset, got %v", c.Offset())
	}

	c.Reset()
	if c.Offset() != 0 {
		t.Errorf("expected zero offset after reset, got %v", c.Offset())
	}
}
