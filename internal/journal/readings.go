package journal

import (
	"fmt"
	"strings"

	"github.com/wondertwin-ai/starjar/internal/ledger"
)

// Weekdays are the valid reading days, Sunday first.
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// SugarReading is a day's before/after-meal glucose measurement in mg/dL.
// A nil value means the reading was not taken.
type SugarReading struct {
	Day    string `json:"day"`
	Before *int   `json:"before"`
	After  *int   `json:"after"`
	Notes  string `json:"notes"`
}

func validDay(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Validate checks the day name and that readings are positive.
func (r SugarReading) Validate() error {
	if !validDay(r.Day) {
		return fmt.Errorf("%w: day %q", ErrInvalidReading, r.Day)
	}
	if r.Before != nil && *r.Before <= 0 {
		return fmt.Errorf("%w: before must be positive", ErrInvalidReading)
	}
	if r.After != nil && *r.After <= 0 {
		return fmt.Errorf("%w: after must be positive", ErrInvalidReading)
	}
	return nil
}

// Readings returns the stored sugar readings.
func (j *Journal) Readings() []SugarReading {
	var readings []SugarReading
	readJSON(j.kv, j.logger, ReadingsKey, &readings)
	if readings == nil {
		readings = []SugarReading{}
	}
	return readings
}

// SetReading replaces the reading for r.Day, or appends it if the day has none.
func (j *Journal) SetReading(r SugarReading) ([]SugarReading, error) {
	r.Day = strings.ToLower(strings.TrimSpace(r.Day))
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var out []SugarReading
	err := j.ledger.Update(func(tx *ledger.Tx) error {
		var readings []SugarReading
		readJSON(tx.KV(), j.logger, ReadingsKey, &readings)

		replaced := false
		for i := range readings {
			if readings[i].Day == r.Day {
				readings[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			readings = append(readings, r)
		}
		if err := writeJSON(tx.KV(), ReadingsKey, readings); err != nil {
			return err
		}
		out = readings
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set reading: %w", err)
	}
	return out, nil
}
