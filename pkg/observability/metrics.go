package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Permission metrics
	PermissionChecksTotal  *prometheus.CounterVec
	PermissionDeniedTotal  *prometheus.CounterVec
	PermissionCheckErrors  *prometheus.CounterVec

	// Business-rule metrics
	RuleEvaluationsTotal *prometheus.CounterVec
	RuleViolationsTotal  *prometheus.CounterVec
	OwnerBypassesTotal   *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Database metrics
	DBOperationsTotal   *prometheus.CounterVec
	DBOperationDuration *prometheus.HistogramVec
	DBErrorsTotal       *prometheus.CounterVec

	// Business metrics
	ActiveStaffTotal prometheus.Gauge
	OpenCasesTotal   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barrister_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_permission_checks_total",
				Help: "Total number of permission checks",
			},
			[]string{"action", "result"},
		),
		PermissionDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_permission_denied_total",
				Help: "Total number of denied permission checks",
			},
			[]string{"action"},
		),
		PermissionCheckErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_permission_check_errors_total",
				Help: "Permission checks that failed closed due to store errors",
			},
			[]string{"action"},
		),
		RuleEvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_rule_evaluations_total",
				Help: "Total number of business rule evaluations",
			},
			[]string{"rule", "result"},
		),
		RuleViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_rule_violations_total",
				Help: "Total number of business rule violations",
			},
			[]string{"rule"},
		),
		OwnerBypassesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_owner_bypasses_total",
				Help: "Total number of guild owner rule bypasses",
			},
			[]string{"rule"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),
		DBOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_db_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"store", "operation"},
		),
		DBOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barrister_db_operation_duration_seconds",
				Help:    "Database operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store", "operation"},
		),
		DBErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barrister_db_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"store", "operation"},
		),
		ActiveStaffTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "barrister_active_staff_total",
				Help: "Current number of active staff records",
			},
		),
		OpenCasesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "barrister_open_cases_total",
				Help: "Current number of non-closed cases",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PermissionChecksTotal,
		m.PermissionDeniedTotal,
		m.PermissionCheckErrors,
		m.RuleEvaluationsTotal,
		m.RuleViolationsTotal,
		m.OwnerBypassesTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DBOperationsTotal,
		m.DBOperationDuration,
		m.DBErrorsTotal,
		m.ActiveStaffTotal,
		m.OpenCasesTotal,
	)

	return m
}

// ObservePermissionCheck records the outcome of a permission check
func (m *Metrics) ObservePermissionCheck(action string, allowed bool) {
	m.PermissionChecksTotal.WithLabelValues(action, resultLabel(allowed)).Inc()
	if !allowed {
		m.PermissionDeniedTotal.WithLabelValues(action).Inc()
	}
}

// ObserveRuleEvaluation records the outcome of a business rule evaluation
func (m *Metrics) ObserveRuleEvaluation(rule string, valid bool) {
	m.RuleEvaluationsTotal.WithLabelValues(rule, resultLabel(valid)).Inc()
	if !valid {
		m.RuleViolationsTotal.WithLabelValues(rule).Inc()
	}
}

// ObserveDBOperation records a database operation and its duration
func (m *Metrics) ObserveDBOperation(store, operation string, duration time.Duration, err error) {
	m.DBOperationsTotal.WithLabelValues(store, operation).Inc()
	m.DBOperationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		m.DBErrorsTotal.WithLabelValues(store, operation).Inc()
	}
}

func resultLabel(ok bool) string {
	if ok {
		return "allowed"
	}
	return "denied"
}

// Handler returns an HTTP handler serving the metrics registry
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware instruments an HTTP handler with request metrics
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
