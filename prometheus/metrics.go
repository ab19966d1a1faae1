package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/victorydiv/fojournapp-sub002/pkg/config"
)

var (
	// Invitation metrics
	InvitationsSentCounter      prometheus.Counter
	InvitationsAcceptedCounter  prometheus.Counter
	InvitationsDeclinedCounter  prometheus.Counter
	InvitationsCancelledCounter prometheus.Counter

	// Merge lifecycle metrics
	MergesCreatedCounter   prometheus.Counter
	MergesDissolvedCounter prometheus.Counter
	ActiveMergesGauge      prometheus.Gauge

	// Error metrics
	MergeErrorCounter *prometheus.CounterVec

	// Profile resolution metrics
	ProfileResolutionCounter *prometheus.CounterVec

	// Database operation metrics
	DBOperationHistogram *prometheus.HistogramVec

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	// Namespace prefix for metrics
	namespace string
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics(cfg *config.Config) {
	namespace = cfg.Metrics.Prefix

	// Invitation metrics
	InvitationsSentCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_sent_total",
		Help:      "Total number of merge invitations sent",
	})

	InvitationsAcceptedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_accepted_total",
		Help:      "Total number of merge invitations accepted",
	})

	InvitationsDeclinedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_declined_total",
		Help:      "Total number of merge invitations declined",
	})

	InvitationsCancelledCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_cancelled_total",
		Help:      "Total number of merge invitations cancelled",
	})

	// Merge lifecycle metrics
	MergesCreatedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "merges_created_total",
		Help:      "Total number of account merges created",
	})

	MergesDissolvedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "merges_dissolved_total",
		Help:      "Total number of account merges dissolved",
	})

	ActiveMergesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_merges",
		Help:      "Number of currently active account merges",
	})

	// Error metrics
	MergeErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_errors_total",
			Help:      "Total number of merge operation errors",
		},
		[]string{"kind"},
	)

	// Profile resolution metrics
	ProfileResolutionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_resolutions_total",
			Help:      "Total number of public profile resolutions",
		},
		[]string{"type", "requester"},
	)

	// Database operation metrics
	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Request metrics
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Track API request count
			APIRequestCounter.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Inc()

			// Process the request
			err := next(c)

			// Track request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			RequestDurationHistogram.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(duration)

			// Track errors
			if c.Response().Status >= 400 {
				APIErrorCounter.With(prometheus.Labels{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
				}).Inc()
			}

			return err
		}
	}
}

// HandlerFunc returns a HTTP handler for metrics endpoint
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TrackDBOperation returns a function that tracks database operation duration
func TrackDBOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordMergeError increments the merge error counter for the given kind
func RecordMergeError(kind string) {
	if MergeErrorCounter != nil {
		MergeErrorCounter.With(prometheus.Labels{"kind": kind}).Inc()
	}
}

// RecordProfileResolution increments the profile resolution counter
func RecordProfileResolution(resolutionType, requester string) {
	if ProfileResolutionCounter != nil {
		ProfileResolutionCounter.With(prometheus.Labels{
			"type":      resolutionType,
			"requester": requester,
		}).Inc()
	}
}
