package bloc

import (
	"log/slog"
	"reflect"
	"slices"
	"time"
)

// TransitionFunc computes the next state from the current state and an
// event. Unrecognized events must return current unchanged and a nil error.
type TransitionFunc[S, E any] func(current S, event E) (S, error)

// EqualFunc reports whether two states are equal.
type EqualFunc[S any] func(a, b S) bool

// StateChangeFunc observes a state replacement.
type StateChangeFunc[S any] func(previous, current S) error

// EventFunc observes every submitted event.
type EventFunc[E any] func(event E) error

// SubscriberID identifies a registered observer. IDs are unique per Bloc
// across both channels and never reused. Zero is never a valid ID.
type SubscriberID uint64

type stateObserver[S any] struct {
	id SubscriberID
	fn StateChangeFunc[S]
}

type eventObserver[E any] struct {
	id SubscriberID
	fn EventFunc[E]
}

// Bloc owns one current state of type S and accepts events of type E.
type Bloc[S, E any] struct {
	state      S
	transition TransitionFunc[S, E]
	equal      EqualFunc[S]

	// Observer slices are replaced, never modified in place, so a fan-out
	// can iterate the slice it started with.
	stateObservers []stateObserver[S]
	eventObservers []eventObserver[E]
	lastID         SubscriberID
	disposed       bool

	events  uint64
	changes uint64

	name    string
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// New creates a Bloc whose states are compared with ==.
//
// When S is an interface type every dynamic state value must be comparable,
// otherwise the comparison panics at Submit time. Use NewWithEqual for
// states that are not comparable.
func New[S comparable, E any](
	initial S,
	transition TransitionFunc[S, E],
	opts ...Option,
) (*Bloc[S, E], error) {
	return NewWithEqual(initial, transition, func(a, b S) bool { return a == b }, opts...)
}

// NewWithEqual creates a Bloc that detects no-op transitions with equal.
func NewWithEqual[S, E any](
	initial S,
	transition TransitionFunc[S, E],
	equal EqualFunc[S],
	opts ...Option,
) (*Bloc[S, E], error) {
	if isNil(initial) {
		return nil, ErrNilState
	}
	if transition == nil {
		return nil, ErrNilTransition
	}
	if equal == nil {
		return nil, ErrNilEqual
	}
	cfg := newConfig(opts)
	b := &Bloc[S, E]{
		state:      initial,
		transition: transition,
		equal:      equal,
		name:       cfg.name,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		now:        cfg.now,
	}
	b.metrics.setSubscribers(b.name, 0, 0)
	b.logger.Debug("bloc created", "bloc", b.name, "state", initial)
	return b, nil
}

// State returns the current state.
func (b *Bloc[S, E]) State() S {
	return b.state
}

// Submit runs the transition for event, replaces the state when it changed
// and notifies observers: state-change observers first, only on a change,
// then raw-event observers, always.
//
// A failing transition leaves the state untouched, notifies nobody and is
// returned as a *TransitionError. The first failing observer stops the
// fan-out and is returned as an *ObserverError.
func (b *Bloc[S, E]) Submit(event E) error {
	b.events++
	b.metrics.eventSubmitted(b.name)

	next, err := b.transition(b.state, event)
	if err != nil {
		b.metrics.transitionFailed(b.name)
		b.logger.Warn(
			"transition failed",
			"bloc", b.name,
			"event", event,
			"err", err,
		)
		return &TransitionError{Event: event, Err: err}
	}

	if b.equal(b.state, next) {
		b.logger.Debug("state unchanged", "bloc", b.name, "event", event)
	} else {
		prev := b.state
		b.state = next
		b.changes++
		b.metrics.stateChanged(b.name)
		b.logger.Debug(
			"state changed",
			"bloc", b.name,
			"from", prev,
			"to", next,
		)
		if err := b.notifyStateChange(prev, next); err != nil {
			return err
		}
	}

	return b.notifyEvent(event)
}

func (b *Bloc[S, E]) notifyStateChange(prev, next S) error {
	for _, obs := range b.stateObservers {
		if err := obs.fn(prev, next); err != nil {
			return b.observerFailed(obs.id, ChannelStateChange, err)
		}
	}
	return nil
}

func (b *Bloc[S, E]) notifyEvent(event E) error {
	for _, obs := range b.eventObservers {
		if err := obs.fn(event); err != nil {
			return b.observerFailed(obs.id, ChannelEvent, err)
		}
	}
	return nil
}

func (b *Bloc[S, E]) observerFailed(id SubscriberID, ch Channel, err error) error {
	b.metrics.observerFailed(b.name, ch)
	b.logger.Warn(
		"observer failed",
		"bloc", b.name,
		"channel", ch,
		"subscriber", id,
		"err", err,
	)
	return &ObserverError{Subscriber: id, Channel: ch, Err: err}
}

// OnStateChange registers fn to be called with (previous, current) after
// every state replacement. A nil fn is ignored and yields 0.
func (b *Bloc[S, E]) OnStateChange(fn StateChangeFunc[S]) SubscriberID {
	if fn == nil {
		return 0
	}
	id := b.nextID()
	b.stateObservers = append(
		slices.Clip(b.stateObservers),
		stateObserver[S]{id: id, fn: fn},
	)
	b.updateSubscriberMetrics()
	return id
}

// OnEvent registers fn to be called with every submitted event. A nil fn is
// ignored and yields 0.
func (b *Bloc[S, E]) OnEvent(fn EventFunc[E]) SubscriberID {
	if fn == nil {
		return 0
	}
	id := b.nextID()
	b.eventObservers = append(
		slices.Clip(b.eventObservers),
		eventObserver[E]{id: id, fn: fn},
	)
	b.updateSubscriberMetrics()
	return id
}

func (b *Bloc[S, E]) nextID() SubscriberID {
	b.lastID++
	return b.lastID
}

// Unsubscribe removes the observer registered under id, whichever channel it
// is on. It reports whether an observer was removed.
func (b *Bloc[S, E]) Unsubscribe(id SubscriberID) bool {
	if i := slices.IndexFunc(b.stateObservers, func(o stateObserver[S]) bool { return o.id == id }); i >= 0 {
		b.stateObservers = slices.Delete(slices.Clone(b.stateObservers), i, i+1)
		b.updateSubscriberMetrics()
		return true
	}
	if i := slices.IndexFunc(b.eventObservers, func(o eventObserver[E]) bool { return o.id == id }); i >= 0 {
		b.eventObservers = slices.Delete(slices.Clone(b.eventObservers), i, i+1)
		b.updateSubscriberMetrics()
		return true
	}
	return false
}

// Subscribers returns the number of registered observers per channel.
func (b *Bloc[S, E]) Subscribers() (stateChange, event int) {
	return len(b.stateObservers), len(b.eventObservers)
}

func (b *Bloc[S, E]) updateSubscriberMetrics() {
	b.metrics.setSubscribers(b.name, len(b.stateObservers), len(b.eventObservers))
}

// Dispose removes every observer. The state is kept and Submit keeps
// applying transitions. Safe to call multiple times; each call clears
// whatever was registered since the previous one.
func (b *Bloc[S, E]) Dispose() {
	b.stateObservers = nil
	b.eventObservers = nil
	b.updateSubscriberMetrics()
	if !b.disposed {
		b.disposed = true
		b.logger.Debug("bloc disposed", "bloc", b.name)
	}
}

// Disposed reports whether Dispose has been called.
func (b *Bloc[S, E]) Disposed() bool {
	return b.disposed
}

// Name returns the name set with WithName.
func (b *Bloc[S, E]) Name() string {
	return b.name
}

func (b *Bloc[S, E]) String() string {
	return "bloc(" + b.name + ")"
}

// isNil reports whether v is absent: a nil interface or a nil pointer, map,
// slice, channel or func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
