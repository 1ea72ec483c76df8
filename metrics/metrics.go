// Package metrics provides Prometheus metrics for monitoring the streaming
// client:
//   - connection state and reconnection attempts
//   - received and dispatched event rates
//   - escalated error counts
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Streamer groups the metrics published by one connection client.
type Streamer struct {
	Connected        prometheus.Gauge
	Reconnects       prometheus.Counter
	EventsReceived   prometheus.Counter
	EventsDispatched *prometheus.CounterVec
	EventsDropped    prometheus.Counter
	ErrorsEscalated  prometheus.Counter
}

// NewStreamer registers streamer metrics on reg.
func NewStreamer(reg prometheus.Registerer) *Streamer {
	factory := promauto.With(reg)
	return &Streamer{
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clientbase_connected",
			Help: "1 while the websocket connection is established.",
		}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "clientbase_reconnect_attempts_total",
			Help: "Number of scheduled reconnection attempts.",
		}),
		EventsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "clientbase_events_received_total",
			Help: "Number of inbound frames received.",
		}),
		EventsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clientbase_events_dispatched_total",
			Help: "Number of events dispatched to handlers, by event type.",
		}, []string{"type"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "clientbase_events_dropped_total",
			Help: "Number of malformed or unhandled events dropped.",
		}),
		ErrorsEscalated: factory.NewCounter(prometheus.CounterOpts{
			Name: "clientbase_errors_escalated_total",
			Help: "Number of errors escalated to the supervisor.",
		}),
	}
}

// Handler returns an HTTP handler serving the given gatherer, typically a
// *prometheus.Registry.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
