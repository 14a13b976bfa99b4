package bloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comalice/bloc"
)

type testState interface{ isTestState() }

type initialState struct{}
type emptyState struct{}
type intState struct{ Value int }
type stringState struct{ Value string }

func (initialState) isTestState() {}
func (emptyState) isTestState()   {}
func (intState) isTestState()     {}
func (stringState) isTestState()  {}

type testEvent interface{ isTestEvent() }

type emptyEvent struct{}
type intEvent struct{ Value int }
type stringEvent struct{ Value string }
type notHandledEvent struct{}

func (emptyEvent) isTestEvent()      {}
func (intEvent) isTestEvent()        {}
func (stringEvent) isTestEvent()     {}
func (notHandledEvent) isTestEvent() {}

// testBloc is a concrete bloc built on the generic container.
type testBloc struct {
	*bloc.Bloc[testState, testEvent]
}

func handleTestEvent(current testState, evt testEvent) (testState, error) {
	switch e := evt.(type) {
	case emptyEvent:
		return emptyState{}, nil
	case intEvent:
		return intState{Value: e.Value}, nil
	case stringEvent:
		return stringState{Value: e.Value}, nil
	default:
		return current, nil
	}
}

func newTestBloc(t testing.TB, opts ...bloc.Option) *testBloc {
	t.Helper()
	return newTestBlocFrom(t, initialState{}, opts...)
}

func newTestBlocFrom(t testing.TB, initial testState, opts ...bloc.Option) *testBloc {
	t.Helper()
	b, err := bloc.New(initial, handleTestEvent, opts...)
	require.NoError(t, err)
	return &testBloc{Bloc: b}
}
