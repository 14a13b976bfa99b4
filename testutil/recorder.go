// Package testutil records bloc notifications for tests.
package testutil

import "github.com/comalice/bloc"

// Change is one state-change notification.
type Change[S any] struct {
	Previous S
	Current  S
}

// Entry is one notification of either channel, in arrival order.
type Entry[S, E any] struct {
	Channel bloc.Channel
	Change  Change[S] // set for ChannelStateChange
	Event   E         // set for ChannelEvent
}

// Recorder subscribes to both channels of a Bloc and keeps every
// notification it receives.
type Recorder[S, E any] struct {
	log []Entry[S, E]
	ids []bloc.SubscriberID

	stateErr error
	eventErr error
}

// Record creates a Recorder attached to b.
func Record[S, E any](b *bloc.Bloc[S, E]) *Recorder[S, E] {
	r := &Recorder[S, E]{}
	r.Attach(b)
	return r
}

// Attach subscribes r to both channels of b.
func (r *Recorder[S, E]) Attach(b *bloc.Bloc[S, E]) {
	r.ids = append(r.ids,
		b.OnStateChange(func(prev, cur S) error {
			r.log = append(r.log, Entry[S, E]{
				Channel: bloc.ChannelStateChange,
				Change:  Change[S]{Previous: prev, Current: cur},
			})
			return r.stateErr
		}),
		b.OnEvent(func(evt E) error {
			r.log = append(r.log, Entry[S, E]{
				Channel: bloc.ChannelEvent,
				Event:   evt,
			})
			return r.eventErr
		}),
	)
}

// Detach unsubscribes r from b.
func (r *Recorder[S, E]) Detach(b *bloc.Bloc[S, E]) {
	for _, id := range r.ids {
		b.Unsubscribe(id)
	}
	r.ids = nil
}

// FailStateChange makes the state-change observer return err (nil restores).
func (r *Recorder[S, E]) FailStateChange(err error) { r.stateErr = err }

// FailEvent makes the event observer return err (nil restores).
func (r *Recorder[S, E]) FailEvent(err error) { r.eventErr = err }

// Log returns every notification in arrival order.
func (r *Recorder[S, E]) Log() []Entry[S, E] {
	return append([]Entry[S, E](nil), r.log...)
}

// Changes returns the state-change notifications.
func (r *Recorder[S, E]) Changes() []Change[S] {
	var out []Change[S]
	for _, e := range r.log {
		if e.Channel == bloc.ChannelStateChange {
			out = append(out, e.Change)
		}
	}
	return out
}

// Events returns the raw-event notifications.
func (r *Recorder[S, E]) Events() []E {
	var out []E
	for _, e := range r.log {
		if e.Channel == bloc.ChannelEvent {
			out = append(out, e.Event)
		}
	}
	return out
}

// Channels returns the channel of each notification, in order.
func (r *Recorder[S, E]) Channels() []bloc.Channel {
	out := make([]bloc.Channel, 0, len(r.log))
	for _, e := range r.log {
		out = append(out, e.Channel)
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder[S, E]) Reset() {
	r.log = nil
}
