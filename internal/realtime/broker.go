package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// EventType mirrors the row-change kinds delivered by the old vendor
// channel: INSERT, UPDATE or DELETE.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one row change on a named table. UserID scopes per-user events
// (cart lines, favourites); it is uuid.Nil for unscoped tables.
type Event struct {
	Table   string    `json:"table"`
	Type    EventType `json:"type"`
	UserID  uuid.UUID `json:"-"`
	Payload any       `json:"payload"`
}

// Filter selects which events a subscriber receives. An empty Tables slice
// matches every table; a nil UserID matches every user.
type Filter struct {
	Tables []string
	UserID *uuid.UUID
}

func (f Filter) matches(e Event) bool {
	if f.UserID != nil && e.UserID != *f.UserID {
		return false
	}
	if len(f.Tables) == 0 {
		return true
	}
	for _, t := range f.Tables {
		if t == e.Table {
			return true
		}
	}
	return false
}

// Broker fans row-change events out to subscribed sessions. Publish never
// blocks: a subscriber that cannot keep up loses events instead of stalling
// the publisher, which matches the at-most-once push of the original
// channel (clients re-fetch on receipt anyway).
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

type subscriber struct {
	filter Filter
	ch     chan Event
}

const subscriberBuffer = 16

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]subscriber)}
}

// Subscribe registers a filtered listener. The returned cancel func must be
// called when the session ends; afterwards the channel is closed.
func (b *Broker) Subscribe(f Filter) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = subscriber{filter: f, ch: ch}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every matching subscriber.
func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if !sub.filter.matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			// drop rather than block the publishing request
		}
	}
}
