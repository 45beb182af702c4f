package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"taskboard/internal/models"
)

var (
	TaskMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_task_mutations_total",
			Help: "Task mutations applied to the store, by operation",
		},
		[]string{"op"},
	)
	Tasks = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskboard_tasks",
			Help: "Tasks currently held by the store, by state",
		},
		[]string{"state"},
	)
	UrgentTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskboard_urgent_tasks",
			Help: "Open tasks due within the next 24 hours at the last sweep",
		},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "HTTP requests served, by route and status",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(TaskMutations)
	prometheus.MustRegister(Tasks)
	prometheus.MustRegister(UrgentTasks)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// ObserveStats publishes the collection counters as gauges.
func ObserveStats(s models.Stats) {
	Tasks.WithLabelValues("total").Set(float64(s.Total))
	Tasks.WithLabelValues("completed").Set(float64(s.Completed))
	Tasks.WithLabelValues("pending").Set(float64(s.Pending))
}

// Middleware records request counts and latency keyed by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
