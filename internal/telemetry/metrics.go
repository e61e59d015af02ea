package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ValidationsTotal.
const (
	OutcomeOK             = "ok"
	OutcomeTransportError = "transport_error"
	OutcomeHTTPError      = "http_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeAPIError       = "api_error"
)

// Metrics holds Prometheus collectors for address validation.
type Metrics struct {
	// Upstream API
	ValidationsTotal *prometheus.CounterVec
	APILatency       *prometheus.HistogramVec
	FeedbackTotal    *prometheus.CounterVec

	// Cache
	CacheLookups *prometheus.CounterVec
	CacheWrites  *prometheus.CounterVec

	// Interpretation
	ConfidenceLevels *prometheus.CounterVec
	AddressTypes     *prometheus.CounterVec
	Scores           prometheus.Histogram

	// Events
	EventsPublished *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on reg. A nil reg
// registers on the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "addressvalidation"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ValidationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "validations_total",
				Help:      "Calls to the address validation API by outcome",
			},
			[]string{"outcome"},
		),
		APILatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Latency of address validation API calls",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
			},
			[]string{"method"},
		),
		FeedbackTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "feedback_total",
				Help:      "Validation feedback calls by conclusion and outcome",
			},
			[]string{"conclusion", "outcome"},
		),
		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Cache lookups by result",
			},
			[]string{"result"}, // hit, miss, error
		),
		CacheWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "writes_total",
				Help:      "Cache writes by result",
			},
			[]string{"result"}, // ok, error
		),
		ConfidenceLevels: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "result",
				Name:      "confidence_total",
				Help:      "Validated addresses by confidence level",
			},
			[]string{"level"},
		),
		AddressTypes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "result",
				Name:      "address_type_total",
				Help:      "Validated addresses by address type",
			},
			[]string{"type"},
		),
		Scores: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "result",
				Name:      "score",
				Help:      "Distribution of address quality scores",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Validation events published by result",
			},
			[]string{"result"},
		),
	}
}
