package store

import (
	"sync"

	"sdn-controller/pkg/model"
)

// DefaultRetention is how many events the memory journal keeps.
const DefaultRetention = 1000

// MemoryStore keeps the most recent events in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	events    []model.Event
	retention int
}

func NewMemoryStore(retention int) *MemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryStore{retention: retention}
}

func (m *MemoryStore) AppendEvent(e model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	if len(m.events) > m.retention {
		m.events = append([]model.Event(nil), m.events[len(m.events)-m.retention:]...)
	}
	return nil
}

func (m *MemoryStore) ListEvents(limit int) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tail(m.events, limit), nil
}

func (m *MemoryStore) FlowHistory(flowID int64, limit int) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Event
	for _, e := range m.events {
		if e.FlowID == flowID {
			out = append(out, e)
		}
	}
	return tail(out, limit), nil
}

// Ping reports readiness for health endpoints.
func (m *MemoryStore) Ping() error { return nil }

func (m *MemoryStore) Close() error { return nil }
