// Package sensor implements a typed in-process event bus. Each entity
// kind gets its own Sensor instance so group and user subscribers never
// see each other's traffic.
package sensor

import "sync"

// Event names a notification kind carried by a Sensor.
type Event string

const (
	ItemSynced  Event = "item-synced"
	ItemFailed  Event = "item-failed"
	ItemDeleted Event = "item-deleted"
	SyncStarted Event = "sync-started"
	SyncSuccess Event = "sync-success"
	SyncFailure Event = "sync-failure"
	Reloaded    Event = "collection-reloaded"
)

// Payload is what handlers receive. Item carries the affected record for
// item-level events and the zero value otherwise. Err is set only for
// failure events.
type Payload[T any] struct {
	Event Event
	Item  T
	Err   error
}

// Handler consumes one event payload. Handlers run synchronously on the
// emitting goroutine and must not block.
type Handler[T any] func(Payload[T])

// Subscription identifies one registered handler for removal.
type Subscription struct {
	event Event
	id    uint64
}

// Sensor is a typed pub/sub bus. The zero value is not usable, construct
// with New.
type Sensor[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[Event]map[uint64]Handler[T]
}

// New returns an empty Sensor.
func New[T any]() *Sensor[T] {
	return &Sensor[T]{handlers: make(map[Event]map[uint64]Handler[T])}
}

// On registers a handler for an event and returns its subscription.
// Events are delivered only to handlers registered at emit time, there
// is no replay for late subscribers.
func (s *Sensor[T]) On(event Event, h Handler[T]) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if s.handlers[event] == nil {
		s.handlers[event] = make(map[uint64]Handler[T])
	}
	s.handlers[event][s.nextID] = h
	return Subscription{event: event, id: s.nextID}
}

// Off removes a previously registered handler. Removing an already
// removed subscription is a no-op.
func (s *Sensor[T]) Off(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers[sub.event], sub.id)
}

// Emit delivers a payload to every handler registered for the event.
// Handlers registered during delivery do not receive the current event.
func (s *Sensor[T]) Emit(p Payload[T]) {
	s.mu.Lock()
	snapshot := make([]Handler[T], 0, len(s.handlers[p.Event]))
	for _, h := range s.handlers[p.Event] {
		snapshot = append(snapshot, h)
	}
	s.mu.Unlock()

	for _, h := range snapshot {
		h(p)
	}
}

// ItemSynced reports a record reaching a confirmed state.
func (s *Sensor[T]) ItemSynced(item T) {
	s.Emit(Payload[T]{Event: ItemSynced, Item: item})
}

// ItemFailed reports a record whose sync attempt failed.
func (s *Sensor[T]) ItemFailed(item T, err error) {
	s.Emit(Payload[T]{Event: ItemFailed, Item: item, Err: err})
}

// ItemDeleted reports a record removed from the local store.
func (s *Sensor[T]) ItemDeleted(item T) {
	s.Emit(Payload[T]{Event: ItemDeleted, Item: item})
}

// Start reports the beginning of a sync batch.
func (s *Sensor[T]) Start() {
	s.Emit(Payload[T]{Event: SyncStarted})
}

// Success reports a sync batch that finished without errors.
func (s *Sensor[T]) Success() {
	s.Emit(Payload[T]{Event: SyncSuccess})
}

// Failure reports a sync batch that finished with at least one error.
func (s *Sensor[T]) Failure(err error) {
	s.Emit(Payload[T]{Event: SyncFailure, Err: err})
}

// ReloadedAll reports that the local collection was rewritten from the
// backend and any cached view should be refreshed.
func (s *Sensor[T]) ReloadedAll() {
	s.Emit(Payload[T]{Event: Reloaded})
}
