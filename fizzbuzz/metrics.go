package fizzbuzz

import (
	"github.com/fxsml/unioncase/union"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the program. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	published    *prometheus.CounterVec // by command
	received     *prometheus.CounterVec // by command
	decodeErrors *prometheus.CounterVec // by error kind
	coincidences prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fizzbuzz",
			Name:      "commands_published_total",
			Help:      "Total number of commands published",
		}, []string{"command"}),

		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fizzbuzz",
			Name:      "commands_received_total",
			Help:      "Total number of commands decoded by the detector",
		}, []string{"command"}),

		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fizzbuzz",
			Name:      "decode_errors_total",
			Help:      "Total number of messages that could not be decoded",
		}, []string{"kind"}),

		coincidences: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fizzbuzz",
			Name:      "coincidences_total",
			Help:      "Total number of FizzBuzz coincidences detected",
		}),
	}

	for _, c := range []prometheus.Collector{m.published, m.received, m.decodeErrors, m.coincidences} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Published records a command handed to the publisher.
func (m *Metrics) Published(cmd Command) {
	if m != nil {
		m.published.WithLabelValues(Name(cmd)).Inc()
	}
}

// Received records a decoded command.
func (m *Metrics) Received(cmd Command) {
	if m != nil {
		m.received.WithLabelValues(Name(cmd)).Inc()
	}
}

// DecodeFailed records a rejected message, labeled with union.ErrorKind.
func (m *Metrics) DecodeFailed(err error) {
	if m != nil && err != nil {
		m.decodeErrors.WithLabelValues(union.ErrorKind(err)).Inc()
	}
}

// Coincidence records a detected FizzBuzz.
func (m *Metrics) Coincidence() {
	if m != nil {
		m.coincidences.Inc()
	}
}
