package middleware

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InitMetrics creates the Fiber Prometheus middleware for HTTP-level metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware adapts the Prometheus middleware into a Fiber handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reticle_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// EngagementActions counts like/favorite state changes by action and outcome.
	// Outcome is "applied" when a row was written and "noop" when the request
	// matched the existing state.
	EngagementActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reticle_engagement_actions_total",
		Help: "Total engagement actions by action and outcome",
	}, []string{"action", "outcome"})

	// GalleryQueryDuration records listing query latency by sort mode.
	GalleryQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reticle_gallery_query_duration_seconds",
		Help:    "Gallery listing query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"sort"})

	// ImageUploads counts crosshair image uploads by result.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reticle_image_uploads_total",
		Help: "Total crosshair image uploads by result",
	}, []string{"result"})
)

// ObserveGalleryQuery returns a function that records listing latency when
// called (e.g. defer).
func ObserveGalleryQuery(sort string) func() {
	start := time.Now()
	return func() {
		GalleryQueryDuration.WithLabelValues(sort).Observe(time.Since(start).Seconds())
	}
}
