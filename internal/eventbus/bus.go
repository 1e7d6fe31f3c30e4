// Package eventbus provides an in-process, per-user fan-out of domain
// events. Delivery is best-effort: a slow subscriber loses events instead
// of blocking the publisher, and the publisher never learns whether anyone
// was listening.
package eventbus

import (
	"sync"

	"lnledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// subscriberBuffer bounds each subscriber channel. A browser tab that
// stops reading only loses its own events.
const subscriberBuffer = 32

// Bus implements ports.EventBus.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
	log  zerolog.Logger
}

type subscriber struct {
	ch chan domain.AppEvent
}

// New creates an empty bus.
func New(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[string]map[*subscriber]struct{}),
		log:  log.With().Str("component", "eventbus").Logger(),
	}
}

// Publish delivers the event to every current subscriber of the user
// without blocking. Subscribers whose buffers are full are skipped.
func (b *Bus) Publish(username string, event domain.AppEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[username] {
		select {
		case sub.ch <- event:
		default:
			b.log.Warn().
				Str("username", username).
				Str("kind", string(event.Kind)).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// Subscribe registers a new subscriber for the user. The returned cancel
// function unregisters it and closes the channel; it is safe to call more
// than once.
func (b *Bus) Subscribe(username string) (<-chan domain.AppEvent, func()) {
	sub := &subscriber{ch: make(chan domain.AppEvent, subscriberBuffer)}

	b.mu.Lock()
	set, ok := b.subs[username]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[username] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[username]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(b.subs, username)
				}
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}
