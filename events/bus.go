// Package events is the notification channel between the session client
// and whatever reacts to authentication changes. The client publishes,
// listeners subscribe; neither knows about the other.
package events

import (
	"context"
	"sync"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/rs/zerolog"
)

// EventName identifies a lifecycle notification.
type EventName string

const (
	// Login is published after a successful login, once tokens and user are stored.
	Login EventName = "login"
	// Logout is published after the persisted session has been cleared.
	Logout EventName = "logout"
)

// Event is a single notification. User is set for Login and nil for Logout.
type Event struct {
	Name EventName
	User authapi.User
}

// Listener reacts to an event. It runs on the publisher's goroutine.
type Listener func(ctx context.Context, ev Event)

// Publisher is the side of the bus the session client depends on.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type subscription struct {
	id       string
	name     EventName
	listener Listener
}

// Bus is a synchronous, in-process publish/subscribe channel.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	ids    map[string]struct{}
	logger zerolog.Logger
}

var _ Publisher = (*Bus)(nil)

// NewBus creates an empty bus. Listener panics are reported to logger.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		ids:    make(map[string]struct{}),
		logger: logger,
	}
}

// Subscribe registers listener for events called name under id.
// Subscribing an id that is already registered does nothing, so setup code
// that runs more than once never installs duplicate listeners.
// The returned func removes the subscription; for a duplicate it is a no-op,
// so only the caller that installed a listener can remove it.
func (b *Bus) Subscribe(id string, name EventName, listener Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ids[id]; ok {
		return func() {}
	}
	b.ids[id] = struct{}{}
	b.subs = append(b.subs, subscription{id: id, name: name, listener: listener})
	return func() { b.unsubscribe(id) }
}

// Subscribed reports whether id has a live subscription.
func (b *Bus) Subscribed(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ids[id]
	return ok
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ids[id]; !ok {
		return
	}
	delete(b.ids, id)
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			break
		}
	}
}

// Publish delivers ev to every matching listener in registration order.
// A panicking listener is logged and skipped; delivery continues.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	targets := make([]Listener, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == ev.Name {
			targets = append(targets, s.listener)
		}
	}
	b.mu.RUnlock()

	for _, l := range targets {
		b.deliver(ctx, l, ev)
	}
}

func (b *Bus) deliver(ctx context.Context, l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Str("event", string(ev.Name)).Msg("listener panicked")
		}
	}()
	l(ctx, ev)
}
