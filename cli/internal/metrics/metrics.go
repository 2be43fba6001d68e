// Package metrics records client-side request metrics with Prometheus.
//
// The CLI is short-lived, so metrics live on a private registry and are
// exported with WriteTextfile for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeEncodeError  = "encode_error"
	OutcomeHTTPError    = "http_error"
	OutcomeNetworkError = "network_error"
	OutcomeDecodeError  = "decode_error"
)

// Recorder holds the client metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reloads  *prometheus.CounterVec
}

// NewRecorder registers the client metrics on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sgadmin_client_requests_total",
				Help: "Requests sent to the SecureGate service",
			},
			[]string{"endpoint", "method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sgadmin_client_request_duration_seconds",
				Help:    "Round-trip duration of requests to the SecureGate service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sgadmin_dashboard_loads_total",
				Help: "Dashboard load cycles by trigger and result",
			},
			[]string{"trigger", "result"},
		),
	}
	r.registry.MustRegister(r.requests, r.duration, r.reloads)
	return r
}

// ObserveRequest records one request round trip.
func (r *Recorder) ObserveRequest(endpoint, method, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(endpoint, method, outcome).Inc()
	r.duration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// ObserveLoad records a dashboard load cycle. trigger is what started it
// ("open", "load", "assign", "remove"), err its result.
func (r *Recorder) ObserveLoad(trigger string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.reloads.WithLabelValues(trigger, result).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes the current metric values in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
