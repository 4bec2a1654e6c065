package eventbus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
)

// StatsProvider - источник статистики шины
type StatsProvider interface {
	Metrics() Stats
}

// MetricsExporter отдаёт Stats шины в Prometheus. Значения читаются
// в момент сбора, отдельного цикла опроса нет.
type MetricsExporter struct {
	bus StatsProvider
	srv *http.Server

	published *prometheus.Desc
	consumed  *prometheus.Desc
	dropped   *prometheus.Desc
	inflight  *prometheus.Desc
}

// NewMetricsExporter создаёт экспортер и регистрирует его в reg (nil - глобальный регистр).
func NewMetricsExporter(bus StatsProvider, reg prometheus.Registerer) *MetricsExporter {
	me := &MetricsExporter{
		bus: bus,
		published: prometheus.NewDesc("eventbus_messages_published_total",
			"Общее число опубликованных сообщений.", nil, nil),
		consumed: prometheus.NewDesc("eventbus_messages_consumed_total",
			"Общее число доставленных сообщений подписчикам.", nil, nil),
		dropped: prometheus.NewDesc("eventbus_messages_dropped_total",
			"Сообщений, отброшенных из-за переполнения буферов.", nil, nil),
		inflight: prometheus.NewDesc("eventbus_messages_inflight",
			"Сообщений в очереди шины, ещё не разосланных.", nil, nil),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(me)
	return me
}

// Describe реализует prometheus.Collector
func (m *MetricsExporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.published
	ch <- m.consumed
	ch <- m.dropped
	ch <- m.inflight
}

// Collect реализует prometheus.Collector
func (m *MetricsExporter) Collect(ch chan<- prometheus.Metric) {
	s := m.bus.Metrics()
	ch <- prometheus.MustNewConstMetric(m.published, prometheus.CounterValue, float64(s.Published))
	ch <- prometheus.MustNewConstMetric(m.consumed, prometheus.CounterValue, float64(s.Consumed))
	ch <- prometheus.MustNewConstMetric(m.dropped, prometheus.CounterValue, float64(s.Dropped))
	ch <- prometheus.MustNewConstMetric(m.inflight, prometheus.GaugeValue, float64(s.InFlight))
}

// StartHTTP поднимает отдельный /metrics на addr (например, ":2112") с метриками из g
// (nil - глобальный регистр). Сервер стартует в отдельной горутине.
func (m *MetricsExporter) StartHTTP(addr string, g prometheus.Gatherer) {
	handler := promhttp.Handler()
	if g != nil {
		handler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	m.srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
}

// Stop останавливает HTTP-эндпоинт, если он был запущен
func (m *MetricsExporter) Stop(ctx context.Context) error {
	if m.srv == nil {
		return nil
	}
	return m.srv.Shutdown(ctx)
}
