package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Errors returned by Redeem and Unlock.
var (
	ErrUnknownReward     = errors.New("unknown reward")
	ErrAlreadyUnlocked   = errors.New("reward already unlocked")
	ErrInsufficientStars = errors.New("insufficient stars")
)

// Redemption records a successful Redeem.
type Redemption struct {
	ID         string    `json:"id"`
	Reward     Reward    `json:"reward"`
	Cost       int       `json:"cost"`
	Balance    int       `json:"balance"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// Redeem checks the balance, debits the reward's cost and unlocks it as one
// operation. Nothing is written unless all three succeed.
func (l *Ledger) Redeem(id int) (Redemption, error) {
	var out Redemption
	err := l.Update(func(tx *Tx) error {
		rewards := tx.Rewards()
		idx := indexOfReward(rewards, id)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrUnknownReward, id)
		}
		reward := rewards[idx]
		if reward.Unlocked {
			return fmt.Errorf("%w: %d", ErrAlreadyUnlocked, id)
		}
		if stars := tx.Stars(); stars < reward.Cost {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientStars, stars, reward.Cost)
		}

		balance, err := tx.Spend(reward.Cost)
		if err != nil {
			return err
		}
		if _, err := tx.Unlock(id); err != nil {
			return err
		}

		reward.Unlocked = true
		out = Redemption{
			ID:         uuid.NewString(),
			Reward:     reward,
			Cost:       reward.Cost,
			Balance:    balance,
			RedeemedAt: l.clock.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return Redemption{}, fmt.Errorf("redeem reward: %w", err)
	}
	return out, nil
}
