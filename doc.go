// Package bloc provides a generic, synchronous state container.
//
// A Bloc holds exactly one current state. Callers submit events; a
// caller-supplied TransitionFunc maps (current state, event) to the next
// state. When the next state differs from the current one the Bloc replaces
// it and notifies state-change observers with (previous, current). Raw-event
// observers are notified for every submitted event, whether or not the state
// changed.
//
// # Transitions
//
// A TransitionFunc must be total over its event type. Events it does not
// recognize return the current state unchanged:
//
//	func counter(s Count, e CounterEvent) (Count, error) {
//		switch e := e.(type) {
//		case Add:
//			return s + Count(e.N), nil
//		default:
//			return s, nil
//		}
//	}
//
// # Notification order
//
// Within one Submit all state-change observers run, in registration order,
// before any raw-event observer runs. Observers return errors; the first
// error stops the fan-out and is returned from Submit as an *ObserverError.
// A state replacement that already happened is not rolled back.
//
// # Disposal
//
// Dispose removes every observer. Submit keeps working afterwards: the
// transition still runs and the state still updates, but nobody is told.
//
// # Concurrency
//
// A Bloc is not safe for concurrent use. Every call runs to completion on the
// calling goroutine and the package starts no goroutines of its own.
package bloc
