// Package metrics registers the process-wide Prometheus collectors named
// in the specification: rule execution timing and errors, final
// confidence distribution, dropped event counts, and rewrite station
// timing. Grounded on github.com/prometheus/client_golang, adopted from
// the retrieval pack's vjache-cie module since the teacher's stack has no
// metrics library and the specification names concrete counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the capability every instrumented component depends on, so
// tests can inject Noop instead of a real registry.
type Recorder interface {
	ObserveRuleDuration(ruleID string, seconds float64)
	IncRuleError(ruleID string)
	ObserveConfidence(final float64)
	IncEventsDropped(sessionID, channel string)
	ObserveStationDuration(stationID string, seconds float64)
}

// Prometheus implements Recorder against a prometheus.Registry.
type Prometheus struct {
	registry        *prometheus.Registry
	ruleDuration    *prometheus.HistogramVec
	ruleErrors      *prometheus.CounterVec
	confidenceFinal prometheus.Histogram
	eventsDropped   *prometheus.CounterVec
	stationDuration *prometheus.HistogramVec
}

// NewPrometheus registers the five collectors named in the specification
// on a fresh registry and returns it.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()

	p := &Prometheus{
		registry: reg,
		ruleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rule_duration_seconds",
			Help:    "Wall-clock time spent running one rule against one block.",
			Buckets: prometheus.DefBuckets,
		}, []string{"rule_id"}),
		ruleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rule_errors_total",
			Help: "Count of rule invocations that returned an error or panicked.",
		}, []string{"rule_id"}),
		confidenceFinal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "confidence_final",
			Help:    "Distribution of final normalized confidence scores.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Count of progress events dropped from a full session outbound queue.",
		}, []string{"session_id", "channel"}),
		stationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rewrite_station_duration_seconds",
			Help:    "Wall-clock time spent running one rewrite station.",
			Buckets: prometheus.DefBuckets,
		}, []string{"station_id"}),
	}

	reg.MustRegister(p.ruleDuration, p.ruleErrors, p.confidenceFinal, p.eventsDropped, p.stationDuration)
	return p
}

// Handler returns the http.Handler exposing the registry in Prometheus
// exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) ObserveRuleDuration(ruleID string, seconds float64) {
	p.ruleDuration.WithLabelValues(ruleID).Observe(seconds)
}

func (p *Prometheus) IncRuleError(ruleID string) {
	p.ruleErrors.WithLabelValues(ruleID).Inc()
}

func (p *Prometheus) ObserveConfidence(final float64) {
	p.confidenceFinal.Observe(final)
}

func (p *Prometheus) IncEventsDropped(sessionID, channel string) {
	p.eventsDropped.WithLabelValues(sessionID, channel).Inc()
}

func (p *Prometheus) ObserveStationDuration(stationID string, seconds float64) {
	p.stationDuration.WithLabelValues(stationID).Observe(seconds)
}

// Noop implements Recorder with no-ops, for tests and callers that do not
// want a registry.
type Noop struct{}

func (Noop) ObserveRuleDuration(string, float64)   {}
func (Noop) IncRuleError(string)                   {}
func (Noop) ObserveConfidence(float64)              {}
func (Noop) IncEventsDropped(string, string)        {}
func (Noop) ObserveStationDuration(string, float64) {}
