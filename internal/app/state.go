package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wondertwin-ai/starjar/internal/ledger"
	"github.com/wondertwin-ai/starjar/pkg/store"
)

// State adapts a snapshotting store to the admin plane. Values that hold JSON
// are exposed as JSON, so a seed file reads {"stars": 40} rather than
// {"stars": "40"}.
type State struct {
	kv     store.Snapshotter
	ledger *ledger.Ledger
}

// NewState wraps kv. Subscribers of l are notified after every load or reset.
func NewState(kv store.Snapshotter, l *ledger.Ledger) *State {
	return &State{kv: kv, ledger: l}
}

// Snapshot returns every stored key.
func (s *State) Snapshot() (any, error) {
	snap, err := s.kv.Snapshot()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(snap))
	for k, v := range snap {
		if json.Valid([]byte(v)) {
			out[k] = json.RawMessage(v)
		} else {
			out[k] = v
		}
	}
	return out, nil
}

// LoadState replaces the stored state with a JSON object of key to value.
// String values are stored unquoted; anything else is stored as compact JSON.
func (s *State) LoadState(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	snap := make(map[string]string, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '"' {
			var str string
			if err := json.Unmarshal(v, &str); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			snap[k] = str
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return fmt.Errorf("decode %s: %w", k, err)
		}
		snap[k] = buf.String()
	}

	if err := s.kv.LoadSnapshot(snap); err != nil {
		return err
	}
	s.ledger.Broadcast()
	return nil
}

// Reset clears all state, returning the ledger to zero stars and a locked
// catalog.
func (s *State) Reset() error {
	if err := s.kv.Reset(); err != nil {
		return err
	}
	s.ledger.Broadcast()
	return nil
}
