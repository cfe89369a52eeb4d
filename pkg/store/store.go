package store

import "sdn-controller/pkg/model"

// EventStore is the control plane journal. It records what happened for
// operators and observers; the controller never reads it back to rebuild
// state.
type EventStore interface {
	AppendEvent(model.Event) error
	// ListEvents returns the newest limit events, oldest first. limit <= 0 means all.
	ListEvents(limit int) ([]model.Event, error)
	// FlowHistory returns the events of one flow, oldest first.
	FlowHistory(flowID int64, limit int) ([]model.Event, error)
	Close() error
}

// NewMemory returns a memory journal with DefaultRetention.
func NewMemory() EventStore {
	return NewMemoryStore(DefaultRetention)
}

func tail(events []model.Event, limit int) []model.Event {
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}
	return append([]model.Event(nil), events[len(events)-limit:]...)
}
