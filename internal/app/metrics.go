package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type hostMetrics struct {
	tickDuration prometheus.Histogram
	commands     *prometheus.CounterVec
	queueDepth   prometheus.Gauge
}

func newHostMetrics(reg prometheus.Registerer) *hostMetrics {
	m := &hostMetrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "addons",
			Subsystem: "host",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного хода.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "host",
			Name:      "commands_total",
			Help:      "Применённые внешние команды.",
		}, []string{"type", "result"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "addons",
			Subsystem: "host",
			Name:      "queue_depth",
			Help:      "Команды, ожидающие следующего хода.",
		}),
	}
	reg.MustRegister(m.tickDuration, m.commands, m.queueDepth)
	return m
}

func (m *hostMetrics) observeTick(d time.Duration, queued int) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
	m.queueDepth.Set(float64(queued))
}

func (m *hostMetrics) observeCommand(t CommandType, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commands.WithLabelValues(string(t), result).Inc()
}
