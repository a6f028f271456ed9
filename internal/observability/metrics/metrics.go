package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetrack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	recordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_records_written_total",
		Help: "Rows created, updated or deleted through the API",
	}, []string{"resource", "action"})

	hoursLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetrack_hours_logged_total",
		Help: "Hours recorded by newly created time logs",
	})

	activitySubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timetrack_activity_subscribers",
		Help: "Open activity feed connections",
	})
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveWrite counts a create, update or delete of resource.
func ObserveWrite(resource, action string) {
	recordsWritten.WithLabelValues(resource, action).Inc()
}

func AddHoursLogged(hours float64) {
	if hours > 0 {
		hoursLogged.Add(hours)
	}
}

func SetSubscribers(count int) {
	activitySubscribers.Set(float64(count))
}

// GinMiddleware records every request under its route template so that ids
// in paths do not explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
