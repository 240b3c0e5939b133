// Package notify is a small in-process publish/subscribe mechanism. Signals
// carry no payload: a subscriber learns that something changed and re-reads
// whatever state it cares about.
package notify

import "sync"

// Signal names.
const (
	StarUpdate   = "starUpdate"
	RewardUpdate = "rewardUpdate"
)

type subscriber struct {
	id uint64
	fn func()
}

// Broadcaster dispatches named signals to registered callbacks.
// The zero value is ready to use.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscriber
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers fn for signal and returns a function that removes it.
// The returned function may be called more than once.
func (b *Broadcaster) Subscribe(signal string, fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[string][]subscriber)
	}
	b.nextID++
	id := b.nextID
	b.subs[signal] = append(b.subs[signal], subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(signal, id) })
	}
}

func (b *Broadcaster) remove(signal string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[signal]
	for i, s := range list {
		if s.id == id {
			// Copy so an in-flight Publish keeps iterating its own slice.
			next := make([]subscriber, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			b.subs[signal] = next
			break
		}
	}
	if len(b.subs[signal]) == 0 {
		delete(b.subs, signal)
	}
}

// Publish calls every subscriber registered for signal at the time of the
// call, synchronously and in registration order. Callbacks may subscribe,
// unsubscribe or publish again.
func (b *Broadcaster) Publish(signal string) {
	b.mu.Lock()
	list := b.subs[signal]
	targets := make([]subscriber, len(list))
	copy(targets, list)
	b.mu.Unlock()

	for _, s := range targets {
		s.fn()
	}
}

// Count returns the number of subscribers for signal.
func (b *Broadcaster) Count(signal string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[signal])
}
