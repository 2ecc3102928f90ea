// Package metrics collects and exposes Prometheus metrics for the
// pairing, relay and moderation paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"net/http"
)

// Collector is the metrics surface used by the services. A nil-safe
// no-op implementation backs tests that do not care about metrics.
type Collector interface {
	RecordMatch()
	RecordEnqueue()
	RecordRelay(kind string)
	RecordDeliveryFailure()
	RecordReport()
	RecordRating(score int)
}

// PromCollector registers and updates the Prometheus series.
type PromCollector struct {
	matches         prometheus.Counter
	enqueues        prometheus.Counter
	relayed         *prometheus.CounterVec
	deliveryFailure prometheus.Counter
	reports         prometheus.Counter
	ratings         *prometheus.CounterVec
}

// NewPromCollector creates the collector and registers its series on
// the given registry.
func NewPromCollector(reg prometheus.Registerer) *PromCollector {
	c := &PromCollector{
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anonchat_matches_total",
			Help: "Total pairing sessions opened.",
		}),
		enqueues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anonchat_enqueues_total",
			Help: "Total queue entries created (no partner was waiting).",
		}),
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anonchat_relayed_total",
			Help: "Total relayed payloads by kind.",
		}, []string{"kind"}),
		deliveryFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anonchat_delivery_failures_total",
			Help: "Total outbound deliveries that failed and were dropped.",
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anonchat_reports_total",
			Help: "Total abuse reports filed.",
		}),
		ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anonchat_ratings_total",
			Help: "Total ratings submitted by score.",
		}, []string{"score"}),
	}
	reg.MustRegister(c.matches, c.enqueues, c.relayed, c.deliveryFailure, c.reports, c.ratings)
	return c
}

func (c *PromCollector) RecordMatch()            { c.matches.Inc() }
func (c *PromCollector) RecordEnqueue()          { c.enqueues.Inc() }
func (c *PromCollector) RecordRelay(kind string) { c.relayed.WithLabelValues(kind).Inc() }
func (c *PromCollector) RecordDeliveryFailure()  { c.deliveryFailure.Inc() }
func (c *PromCollector) RecordReport()           { c.reports.Inc() }
func (c *PromCollector) RecordRating(score int) {
	c.ratings.WithLabelValues(scoreLabel(score)).Inc()
}

func scoreLabel(score int) string {
	switch score {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	case 4:
		return "4"
	case 5:
		return "5"
	}
	return "invalid"
}

// Handler exposes the registry for the admin API's /metrics route.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Noop discards every record. Used in tests and the operator CLI.
type Noop struct{}

func (Noop) RecordMatch()           {}
func (Noop) RecordEnqueue()         {}
func (Noop) RecordRelay(string)     {}
func (Noop) RecordDeliveryFailure() {}
func (Noop) RecordReport()          {}
func (Noop) RecordRating(int)       {}
