// Package ledger owns the star balance and the reward catalog. Both live in a
// store.KV under fixed keys; every mutation goes through Ledger.Update so that
// read-modify-write cycles cannot interleave, and subscribers are told about
// changes only after they are committed.
package ledger

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/wondertwin-ai/starjar/internal/notify"
	"github.com/wondertwin-ai/starjar/pkg/store"
)

// Storage keys.
const (
	StarsKey   = "stars"
	RewardsKey = "rewards"
)

// Ledger is the process-wide star and reward service. Construct one at startup
// and hand it to whatever needs it.
type Ledger struct {
	kv     store.KV
	bus    *notify.Broadcaster
	clock  *store.Clock
	logger *slog.Logger

	mu sync.Mutex // serializes Update
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithBroadcaster shares an existing broadcaster instead of creating one.
func WithBroadcaster(b *notify.Broadcaster) Option {
	return func(l *Ledger) { l.bus = b }
}

// WithClock sets the clock used to timestamp redemptions.
func WithClock(c *store.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger sets the logger for recovered storage problems.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates a Ledger over kv.
func New(kv store.KV, opts ...Option) *Ledger {
	l := &Ledger{kv: kv}
	for _, opt := range opts {
		opt(l)
	}
	if l.bus == nil {
		l.bus = notify.New()
	}
	if l.clock == nil {
		l.clock = store.NewClock()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Broadcaster returns the broadcaster change signals are published on.
func (l *Ledger) Broadcaster() *notify.Broadcaster {
	return l.bus
}

// Clock returns the ledger's clock.
func (l *Ledger) Clock() *store.Clock {
	return l.clock
}

// Tx is the ledger's view of storage inside Update. It must not be used after
// the Update callback returns.
type Tx struct {
	kv     store.KV
	l      *Ledger
	stars  bool
	reward bool
}

// KV exposes the transactional store so callers can persist their own keys in
// the same commit.
func (tx *Tx) KV() store.KV {
	return tx.kv
}

// Stars returns the balance, repairing a missing or corrupt stored value to 0.
func (tx *Tx) Stars() int {
	raw, ok, err := tx.kv.Get(StarsKey)
	if err != nil {
		tx.l.logger.Warn("reading star balance failed, resetting", "err", err)
		tx.resetStars()
		return 0
	}
	if !ok {
		tx.resetStars()
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		tx.l.logger.Warn("corrupt star balance, resetting", "value", raw)
		tx.resetStars()
		return 0
	}
	return n
}

func (tx *Tx) resetStars() {
	if err := tx.kv.Set(StarsKey, "0"); err != nil {
		tx.l.logger.Warn("resetting star balance failed", "err", err)
	}
}

// addStars returns cur+amount clamped to [0, math.MaxInt]. cur is never negative.
func addStars(cur, amount int) int {
	if amount > 0 && cur > math.MaxInt-amount {
		return math.MaxInt
	}
	return max(0, cur+amount)
}

func (tx *Tx) writeStars(n int) error {
	if err := tx.kv.Set(StarsKey, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("write star balance: %w", err)
	}
	tx.stars = true
	return nil
}

// Add increases the balance by amount and returns the new balance. The result
// is floored at zero and saturates at math.MaxInt.
func (tx *Tx) Add(amount int) (int, error) {
	total := addStars(tx.Stars(), amount)
	if err := tx.writeStars(total); err != nil {
		return 0, err
	}
	return total, nil
}

// Spend decreases the balance by amount, flooring at zero. It does not check
// that the balance covers amount.
func (tx *Tx) Spend(amount int) (int, error) {
	cur := tx.Stars()
	total := math.MaxInt
	if amount >= 0 || cur-math.MaxInt <= amount {
		total = max(0, cur-amount)
	}
	if err := tx.writeStars(total); err != nil {
		return 0, err
	}
	return total, nil
}

// Update runs fn with exclusive access to ledger storage. When the store
// implements store.Updater the whole callback is one storage transaction.
// Change signals are published after a successful commit.
func (l *Ledger) Update(fn func(tx *Tx) error) error {
	var committed *Tx
	err := func() error {
		l.mu.Lock()
		defer l.mu.Unlock()

		run := func(kv store.KV) error {
			tx := &Tx{kv: kv, l: l}
			if err := fn(tx); err != nil {
				return err
			}
			committed = tx
			return nil
		}
		if u, ok := l.kv.(store.Updater); ok {
			return u.Update(run)
		}
		return run(l.kv)
	}()
	if err != nil {
		return err
	}

	if committed.stars {
		l.bus.Publish(notify.StarUpdate)
	}
	if committed.reward {
		l.bus.Publish(notify.RewardUpdate)
	}
	return nil
}

// Stars returns the current balance. It never fails: a missing value is
// initialized to 0, and unreadable values are reset to 0.
func (l *Ledger) Stars() int {
	var n int
	if err := l.Update(func(tx *Tx) error {
		n = tx.Stars()
		return nil
	}); err != nil {
		l.logger.Warn("reading star balance failed", "err", err)
		return 0
	}
	return n
}

// Add credits amount stars and returns the new balance.
func (l *Ledger) Add(amount int) (int, error) {
	var total int
	err := l.Update(func(tx *Tx) error {
		var err error
		total, err = tx.Add(amount)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("add stars: %w", err)
	}
	return total, nil
}

// Spend debits amount stars, flooring at zero, and returns the new balance.
// Callers that need an affordability check should use Redeem.
func (l *Ledger) Spend(amount int) (int, error) {
	var total int
	err := l.Update(func(tx *Tx) error {
		var err error
		total, err = tx.Spend(amount)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("spend stars: %w", err)
	}
	return total, nil
}

// Subscribe registers fn to be called after every committed balance change.
func (l *Ledger) Subscribe(fn func()) (unsubscribe func()) {
	return l.bus.Subscribe(notify.StarUpdate, fn)
}

// Watch calls fn with the current balance now and again after every balance
// change, re-reading the balance each time.
func (l *Ledger) Watch(fn func(stars int)) (cancel func()) {
	cancel = l.bus.Subscribe(notify.StarUpdate, func() { fn(l.Stars()) })
	fn(l.Stars())
	return cancel
}

// Broadcast publishes both change signals. Use it after storage was replaced
// underneath the ledger, e.g. by an admin reset.
func (l *Ledger) Broadcast() {
	l.bus.Publish(notify.StarUpdate)
	l.bus.Publish(notify.RewardUpdate)
}
