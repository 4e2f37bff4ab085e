// Package events carries outbound notifications from the game core to
// whatever transport fans them out to connected clients.
package events

import (
	"context"
	"sync"

	"github.com/mcoot/energyofmoney/internal/model"
)

// Publisher delivers events. Implementations must not block the caller for
// long: events are published while a room's lock is held.
type Publisher interface {
	Publish(ctx context.Context, evt model.Event)
}

// Nop discards every event
type Nop struct{}

var _ Publisher = Nop{}

func (Nop) Publish(context.Context, model.Event) {}

// Recorder keeps every published event in order
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

var _ Publisher = (*Recorder)(nil)

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, evt model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of everything published so far
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the published events with the given type
func (r *Recorder) OfType(t model.EventType) []model.Event {
	var out []model.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything published so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans each event out to several publishers in order
type Multi []Publisher

var _ Publisher = Multi(nil)

func (m Multi) Publish(ctx context.Context, evt model.Event) {
	for _, p := range m {
		p.Publish(ctx, evt)
	}
}
