package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "minaarly_http_requests_total",
		Help: "Total number of HTTP requests by route and status",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "minaarly_http_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	ViewportFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minaarly_viewport_fetches_total",
		Help: "Total debounced viewport fetches dispatched by live map sessions",
	})
	ViewportFetchErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minaarly_viewport_fetch_errors_total",
		Help: "Total viewport fetches that failed",
	})
	ViewportStaleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minaarly_viewport_stale_responses_total",
		Help: "Total viewport responses discarded because a newer fetch was dispatched",
	})
	LiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "minaarly_live_sessions",
		Help: "Currently open live map sessions",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minaarly_cache_hits_total",
		Help: "Total redis viewport cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minaarly_cache_misses_total",
		Help: "Total redis viewport cache misses",
	})
	CheckoutSessionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "minaarly_checkout_sessions_total",
		Help: "Checkout session attempts by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(ViewportFetchesTotal)
	prometheus.MustRegister(ViewportFetchErrorsTotal)
	prometheus.MustRegister(ViewportStaleTotal)
	prometheus.MustRegister(LiveSessions)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CheckoutSessionsTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}
