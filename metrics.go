package bloc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors shared by any number of Blocs.
// Series are labelled with the Bloc name. A nil *Metrics records nothing.
type Metrics struct {
	events           *prometheus.CounterVec
	stateChanges     *prometheus.CounterVec
	transitionErrors *prometheus.CounterVec
	observerErrors   *prometheus.CounterVec
	subscribers      *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with promRegistry.
// A nil registry yields working but unregistered collectors.
func NewMetrics(promRegistry prometheus.Registerer) *Metrics {
	promautoFactory := promauto.With(promRegistry)
	return &Metrics{
		events: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bloc_events_total",
				Help: "total events submitted to the bloc",
			},
			[]string{"bloc"},
		),
		stateChanges: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bloc_state_changes_total",
				Help: "total state replacements",
			},
			[]string{"bloc"},
		),
		transitionErrors: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bloc_transition_errors_total",
				Help: "total events whose transition func returned an error",
			},
			[]string{"bloc"},
		),
		observerErrors: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bloc_observer_errors_total",
				Help: "total observer callbacks that returned an error",
			},
			[]string{"bloc", "channel"},
		),
		subscribers: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bloc_subscribers",
				Help: "current number of registered observers",
			},
			[]string{"bloc", "channel"},
		),
	}
}

func (m *Metrics) eventSubmitted(name string) {
	if m != nil {
		m.events.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) stateChanged(name string) {
	if m != nil {
		m.stateChanges.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) transitionFailed(name string) {
	if m != nil {
		m.transitionErrors.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) observerFailed(name string, ch Channel) {
	if m != nil {
		m.observerErrors.WithLabelValues(name, string(ch)).Inc()
	}
}

func (m *Metrics) setSubscribers(name string, stateChange, event int) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(name, string(ChannelStateChange)).
		Set(float64(stateChange))
	m.subscribers.WithLabelValues(name, string(ChannelEvent)).
		Set(float64(event))
}
