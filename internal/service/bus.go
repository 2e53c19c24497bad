package service

import "sync"

// Topics published by the editor controller.
const (
	TopicNetwork      = "network"
	TopicCouriers     = "couriers"
	TopicTours        = "tours"
	TopicScope        = "scope"
	TopicSelection    = "selection"
	TopicNotification = "notification"
	TopicBusy         = "busy"
)

// Event is a state change in the desk session.
type Event struct {
	Topic  string // one of the Topic* constants
	Action string // "refreshed", "changed", "opened", "closed", "started", "finished"
	ID     string // courier id, notification id or "op:courier" when relevant
}

// EventBus is a simple fan-out pub/sub for session change events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
