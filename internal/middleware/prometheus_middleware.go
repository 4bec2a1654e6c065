package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMiddleware собирает HTTP-метрики ops API:
//
//	addons_http_request_duration_seconds{method,route,code} - histogram
//	addons_http_requests_inflight - gauge
//	addons_http_responses_total{route,class} - counter по классам 2xx/4xx/5xx
//
// Все метрики помечены const-меткой service.
type PrometheusMiddleware struct {
	duration  *prometheus.HistogramVec
	inflight  prometheus.Gauge
	responses *prometheus.CounterVec
}

// NewPrometheusMiddleware регистрирует метрики в reg (nil - дефолтный регистр).
func NewPrometheusMiddleware(service string, reg prometheus.Registerer) *PrometheusMiddleware {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": service}

	return &PrometheusMiddleware{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "addons",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "Длительность HTTP-запросов.",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			ConstLabels: labels,
		}, []string{"method", "route", "code"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   "addons",
			Subsystem:   "http",
			Name:        "requests_inflight",
			Help:        "Запросов в обработке.",
			ConstLabels: labels,
		}),
		responses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "addons",
			Subsystem:   "http",
			Name:        "responses_total",
			Help:        "Ответов по классам статуса.",
			ConstLabels: labels,
		}, []string{"route", "class"}),
	}
}

// Handler возвращает gin.HandlerFunc для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pm.inflight.Inc()
		defer pm.inflight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		pm.duration.WithLabelValues(c.Request.Method, route, strconv.Itoa(code)).Observe(time.Since(start).Seconds())
		pm.responses.WithLabelValues(route, statusClass(code)).Inc()
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics, отдающий метрики из g (nil - дефолтный регистр).
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r *gin.Engine, g prometheus.Gatherer) {
	handler := promhttp.Handler()
	if g != nil {
		handler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	r.GET("/metrics", gin.WrapH(handler))
}
