package bloc

import "time"

// Snapshot is a read-only view of a Bloc at one instant, shaped for
// serialization. Events and Changes are running totals.
type Snapshot[S any] struct {
	Name             string    `json:"name" yaml:"name"`
	State            S         `json:"state" yaml:"state"`
	Disposed         bool      `json:"disposed" yaml:"disposed"`
	StateSubscribers int       `json:"stateSubscribers" yaml:"stateSubscribers"`
	EventSubscribers int       `json:"eventSubscribers" yaml:"eventSubscribers"`
	Events           uint64    `json:"events" yaml:"events"`
	Changes          uint64    `json:"changes" yaml:"changes"`
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
}

// Snapshot returns the current view of b.
func (b *Bloc[S, E]) Snapshot() Snapshot[S] {
	return Snapshot[S]{
		Name:             b.name,
		State:            b.state,
		Disposed:         b.disposed,
		StateSubscribers: len(b.stateObservers),
		EventSubscribers: len(b.eventObservers),
		Events:           b.events,
		Changes:          b.changes,
		Timestamp:        b.now(),
	}
}
