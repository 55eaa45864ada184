package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelVerdict = "verdict"
	LabelResult  = "result"
	LabelMode    = "mode"
	LabelSuccess = "success"
)

var (
	// RequestsTotal counts all HTTP requests handled by the gateway
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authgate_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	// VerdictsTotal counts decision-pipeline verdicts by outcome
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_verdicts_total",
			Help: "Total number of decision pipeline verdicts",
		},
		[]string{LabelVerdict},
	)

	// IntrospectionTotal counts token introspection calls by result
	IntrospectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_introspection_total",
			Help: "Total number of token introspection calls",
		},
		[]string{LabelResult},
	)

	// IntrospectionDuration tracks the duration of introspection calls
	IntrospectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authgate_introspection_duration_seconds",
			Help:    "Duration of token introspection calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EnforcementTotal counts policy enforcement calls by mode and result
	EnforcementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_enforcement_total",
			Help: "Total number of policy enforcement calls",
		},
		[]string{LabelMode, LabelResult},
	)

	// EnforcementDuration tracks the duration of enforcement calls
	EnforcementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authgate_enforcement_duration_seconds",
			Help:    "Duration of policy enforcement calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMode},
	)

	// PolicyReloadTotal counts rule-store reloads by outcome
	PolicyReloadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_policy_reload_total",
			Help: "Total number of rule store reloads",
		},
		[]string{LabelSuccess},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordVerdict records a decision pipeline verdict
func (c *Collector) RecordVerdict(verdict string) {
	VerdictsTotal.WithLabelValues(verdict).Inc()
}

// RecordIntrospection records a token introspection call
func (c *Collector) RecordIntrospection(result string, duration time.Duration) {
	IntrospectionTotal.WithLabelValues(result).Inc()
	IntrospectionDuration.Observe(duration.Seconds())
}

// RecordEnforcement records a policy enforcement call
func (c *Collector) RecordEnforcement(mode, result string, duration time.Duration) {
	EnforcementTotal.WithLabelValues(mode, result).Inc()
	EnforcementDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordPolicyReload records a rule store reload
func (c *Collector) RecordPolicyReload(success bool) {
	PolicyReloadTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
