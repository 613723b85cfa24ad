package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"barangay-events/internal/models"
)

const namespace = "barangay"

// Registry holds every metric exposed on /metrics.
var Registry = prometheus.NewRegistry()

// EventChangesTotal counts successful writes by change type.
var EventChangesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_changes_total",
		Help:      "Total number of event creations, updates and deletions",
	},
	[]string{"type"},
)

// Init registers the Go runtime and process collectors.
func Init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RegisterStreamClients exposes the number of connected SSE clients.
func RegisterStreamClients(count func() int) {
	Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Current number of clients on the event change stream",
		},
		func() float64 { return float64(count()) },
	))
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ChangeCounter is a notifier that counts event changes.
type ChangeCounter struct{}

func (ChangeCounter) Notify(_ context.Context, change models.EventChange) error {
	EventChangesTotal.WithLabelValues(string(change.Type)).Inc()
	return nil
}
