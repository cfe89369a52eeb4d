// Package events carries control plane events from the controller to
// observers: logs, the journal, metrics and live subscribers.
package events

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sdn-controller/pkg/model"
)

// Sink receives events in mutation order. Publish is called with the
// controller lock held and must not block.
type Sink interface {
	Publish(model.Event)
}

// Func adapts a plain function to a Sink.
type Func func(model.Event)

func (f Func) Publish(e model.Event) { f(e) }

// Multi fans an event out to every sink in order.
type Multi []Sink

func (m Multi) Publish(e model.Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(e)
		}
	}
}

// Discard drops everything.
var Discard Sink = Func(func(model.Event) {})

// Stamp fills in the id and timestamp of e if unset.
func Stamp(e model.Event) model.Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return e
}

// Journal is any append-only event store.
type Journal interface {
	AppendEvent(model.Event) error
}

// Recorder writes events to a Journal. Write failures are logged and
// otherwise ignored so a broken journal never fails a control operation.
type Recorder struct {
	Journal Journal
	Log     *zap.Logger
}

func (r Recorder) Publish(e model.Event) {
	if err := r.Journal.AppendEvent(e); err != nil && r.Log != nil {
		r.Log.Warn("journal append failed", zap.String("kind", string(e.Kind)), zap.Error(err))
	}
}

// Buffer keeps every event in memory; useful in tests and demos.
type Buffer struct {
	Events []model.Event
}

func (b *Buffer) Publish(e model.Event) { b.Events = append(b.Events, e) }

// Kinds returns the kinds of the buffered events in order.
func (b *Buffer) Kinds() []model.EventKind {
	out := make([]model.EventKind, 0, len(b.Events))
	for _, e := range b.Events {
		out = append(out, e.Kind)
	}
	return out
}

// Reset drops buffered events.
func (b *Buffer) Reset() { b.Events = nil }
