package events

import (
	"sync"
)

// EventType tags a BusEvent. Events are value-typed and carry no payload
// beyond their tag; coverage's percentage is carried by AppState, not by
// the bus (see pkg/state).
type EventType string

const (
	ChangeDetected     EventType = "change.detected"
	CheckPassed        EventType = "check.passed"
	CheckFailed        EventType = "check.failed"
	TestsPassed        EventType = "tests.passed"
	TestsFailed        EventType = "tests.failed"
	TestsSetChanged    EventType = "tests.set_changed"
	TestsSetNotChanged EventType = "tests.set_not_changed"
)

// Event is a single cheaply cloneable bus event.
type Event struct {
	Type EventType
}

// Capacity is the fixed, process-wide bound on how many unconsumed events a
// single subscriber retains. A subscriber that falls more than Capacity
// events behind loses the oldest events it had not yet consumed; Send never
// blocks waiting on a slow subscriber.
const Capacity = 1024

// Bus is an in-process, many-publisher many-subscriber event stream. Every
// subscriber independently receives every event published after it
// subscribed, in publish order.
type Bus struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	closed      bool
}

// NewBus creates a ready-to-use event bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[*Subscriber]struct{})}
}

// Publisher returns a send-only handle onto the bus. Publisher handles are
// thread-safe and cheap to clone.
func (b *Bus) Publisher() *Publisher {
	return &Publisher{bus: b}
}

// Subscribe opens a new subscription. The caller owns the returned handle
// and must call Close when done with it.
func (b *Bus) Subscribe() *Subscriber {
	sub := newSubscriber(b)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.closeLocked()
		return sub
	}
	b.subscribers[sub] = struct{}{}
	return sub
}

// Shutdown closes the bus. Every blocked or future Recv fails with
// ErrClosed; every future Send fails with ErrClosed. Shutdown is idempotent.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subscribers {
		sub.closeLocked()
	}
}

// SubscriberCount returns the number of currently active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Bus) unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub)
}

func (b *Bus) publish(evt Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	for sub := range b.subscribers {
		sub.push(evt)
	}
	return nil
}

// Publisher is a send-only handle onto a Bus.
type Publisher struct {
	bus *Bus
}

// Send publishes an event to every current subscriber. It never blocks on a
// subscriber's consumption rate; it fails only if the bus is shutting down.
func (p *Publisher) Send(evt Event) error {
	return p.bus.publish(evt)
}

// Clone returns an independent handle onto the same bus.
func (p *Publisher) Clone() *Publisher {
	return &Publisher{bus: p.bus}
}
