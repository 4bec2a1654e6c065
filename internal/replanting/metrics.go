package replanting

import "github.com/prometheus/client_golang/prometheus"

// Metrics - счётчики пересадки. Нулевой *Metrics безопасен.
type Metrics struct {
	replanted *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil - глобальный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		replanted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "replanting",
			Name:      "replanted_total",
			Help:      "Посаженные культуры и саженцы.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "replanting",
			Name:      "failures_total",
			Help:      "Посадки, прерванные ошибкой сетки.",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.replanted, m.failures)
	return m
}

func (m *Metrics) observeReplant(kind Kind) {
	if m == nil {
		return
	}
	m.replanted.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observeFailure(kind Kind) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(kind)).Inc()
}
