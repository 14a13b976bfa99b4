package bloc

import (
	"errors"
	"fmt"
)

var (
	ErrNilState      = errors.New("bloc: initial state is nil")
	ErrNilTransition = errors.New("bloc: transition func is nil")
	ErrNilEqual      = errors.New("bloc: equal func is nil")
)

// Channel names one of the two notification channels of a Bloc.
type Channel string

const (
	ChannelStateChange Channel = "state_change"
	ChannelEvent       Channel = "event"
)

// TransitionError is returned by Submit when the transition func fails.
// The state is left untouched and no observer runs.
type TransitionError struct {
	Event any
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("bloc: transition for event %T: %v", e.Event, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// ObserverError is returned by Submit when an observer fails. Observers
// registered after the failing one, on the same or a later channel, were not
// called.
type ObserverError struct {
	Subscriber SubscriberID
	Channel    Channel
	Err        error
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("bloc: %s observer %d: %v", e.Channel, e.Subscriber, e.Err)
}

func (e *ObserverError) Unwrap() error {
	return e.Err
}
