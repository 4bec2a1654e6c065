package productivity

import "github.com/prometheus/client_golang/prometheus"

// Metrics - Prometheus-метрики трекера. Нулевой *Metrics безопасен.
type Metrics struct {
	distance prometheus.Counter
	reports  prometheus.Counter
	tracked  prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil - глобальный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		distance: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "productivity",
			Name:      "distance_blocks_total",
			Help:      "Суммарное пройденное игроками расстояние.",
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "productivity",
			Name:      "reports_total",
			Help:      "Отправленные отчёты о сессии.",
		}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "addons",
			Subsystem: "productivity",
			Name:      "tracked_actors",
			Help:      "Игроки, учтённые в последнем замере.",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.distance, m.reports, m.tracked)
	return m
}

func (m *Metrics) observeDistance(d float64) {
	if m == nil || d <= 0 {
		return
	}
	m.distance.Add(d)
}

func (m *Metrics) observeReport() {
	if m == nil {
		return
	}
	m.reports.Inc()
}

func (m *Metrics) setTracked(n int) {
	if m == nil {
		return
	}
	m.tracked.Set(float64(n))
}
