package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wondertwin-ai/starjar/pkg/store"
)

// Reward is a one-time unlockable badge bought with stars.
type Reward struct {
	ID       int    `json:"id"`
	Icon     string `json:"icon"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	Unlocked bool   `json:"unlocked"`
}

var defaultRewards = []Reward{
	{ID: 1, Icon: "🌟", Name: "نجمة البداية", Cost: 10},
	{ID: 2, Icon: "💪", Name: "وسام القوة", Cost: 25},
	{ID: 3, Icon: "🍎", Name: "شارة الأكل الصحي", Cost: 50},
	{ID: 4, Icon: "🏆", Name: "كأس البطل", Cost: 100},
	{ID: 5, Icon: "🛡️", Name: "درع السكري", Cost: 150},
	{ID: 6, Icon: "💎", Name: "جوهرة الإلتزام", Cost: 200},
}

// DefaultRewards returns a fresh copy of the built-in catalog, all locked.
func DefaultRewards() []Reward {
	out := make([]Reward, len(defaultRewards))
	copy(out, defaultRewards)
	return out
}

// Reconcile overlays persisted unlock flags onto the default catalog. Entries
// are matched by id; the first persisted entry for an id wins and persisted
// ids that are not in the defaults are dropped.
func Reconcile(persisted []Reward) []Reward {
	unlocked := make(map[int]bool, len(persisted))
	for _, p := range persisted {
		if _, seen := unlocked[p.ID]; !seen {
			unlocked[p.ID] = p.Unlocked
		}
	}
	out := DefaultRewards()
	for i := range out {
		out[i].Unlocked = unlocked[out[i].ID]
	}
	return out
}

func readRewards(kv store.KV, logger *slog.Logger) []Reward {
	raw, ok, err := kv.Get(RewardsKey)
	if err != nil {
		logger.Warn("reading rewards failed, using defaults", "err", err)
		return DefaultRewards()
	}
	if !ok {
		return DefaultRewards()
	}
	var persisted []Reward
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		logger.Warn("corrupt rewards, using defaults", "err", err)
		return DefaultRewards()
	}
	return Reconcile(persisted)
}

func indexOfReward(rewards []Reward, id int) int {
	for i, r := range rewards {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Rewards returns the catalog with its current unlock state.
func (tx *Tx) Rewards() []Reward {
	return readRewards(tx.kv, tx.l.logger)
}

// Unlock marks reward id unlocked and persists the full catalog. An unknown
// id leaves storage untouched and returns the catalog as is.
func (tx *Tx) Unlock(id int) ([]Reward, error) {
	rewards := tx.Rewards()
	idx := indexOfReward(rewards, id)
	if idx < 0 {
		return rewards, nil
	}
	rewards[idx].Unlocked = true

	data, err := json.Marshal(rewards)
	if err != nil {
		return nil, fmt.Errorf("encode rewards: %w", err)
	}
	if err := tx.kv.Set(RewardsKey, string(data)); err != nil {
		return nil, fmt.Errorf("write rewards: %w", err)
	}
	tx.reward = true
	return rewards, nil
}

// Rewards returns the catalog. Missing or unreadable state yields the
// defaults, all locked.
func (l *Ledger) Rewards() []Reward {
	return readRewards(l.kv, l.logger)
}

// Unlock marks reward id unlocked without touching the balance. It is
// idempotent, and a no-op for ids not in the catalog.
func (l *Ledger) Unlock(id int) ([]Reward, error) {
	var rewards []Reward
	err := l.Update(func(tx *Tx) error {
		var err error
		rewards, err = tx.Unlock(id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unlock reward %d: %w", id, err)
	}
	return rewards, nil
}
