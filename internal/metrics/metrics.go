// Package metrics holds the prometheus collectors of the counter service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reasons an inbound event is dropped.
const (
	ReasonMalformed      = "malformed"
	ReasonNotJoined      = "not_joined"
	ReasonUnknownSession = "unknown_session"
	ReasonUnknownEvent   = "unknown_event"
	ReasonDecode         = "decode"
	ReasonError          = "error"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "counter_connections",
		Help: "Live realtime connections.",
	})

	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "counter_rooms",
		Help: "Rooms with at least one member.",
	})

	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counter_events_total",
		Help: "Events handled by the event loop, by kind.",
	}, []string{"event"})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counter_events_dropped_total",
		Help: "Inbound events dropped without a state change, by reason.",
	}, []string{"reason"})

	BroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "counter_broadcast_dropped_total",
		Help: "Outbound messages not queued because a send buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
