package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketstate"

var (
	registry = prometheus.NewRegistry()

	// OptionalReadFailures best effort contract reads that reverted, by method
	OptionalReadFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optional_read_failures_total",
		Help:      "Best effort contract reads replaced by their default value.",
	}, []string{"method"})

	// MarketUpdates market gate outcomes, by result (updated, created, skipped, stale, failed)
	MarketUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_updates_total",
		Help:      "Market update gate outcomes.",
	}, []string{"result"})

	// SyncedBlock last block processed by the log syncer
	SyncedBlock = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "synced_block",
		Help:      "Last block fully processed by the log syncer.",
	})

	// EventsHandled handled logs, by event
	EventsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_handled_total",
		Help:      "Contract events handled by the log syncer.",
	}, []string{"event"})
)

func init() {
	registry.MustRegister(OptionalReadFailures, MarketUpdates, SyncedBlock, EventsHandled)
}

// Handler http handler exposing the registry
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
