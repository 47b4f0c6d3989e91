package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps emitted events in process memory, oldest first.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	now    func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

// Insert assigns an id and timestamp and appends the event.
func (s *MemoryStore) Insert(_ context.Context, ev Event) (Event, error) {
	ev.ID = uuid.NewString()
	ev.OccurredAt = s.now()
	ev.Payload = append([]byte(nil), ev.Payload...)
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return ev, nil
}

// List returns events for a topic, or every event when topic is empty.
func (s *MemoryStore) List(topic string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if topic == "" || ev.Topic == topic {
			out = append(out, ev)
		}
	}
	return out
}
