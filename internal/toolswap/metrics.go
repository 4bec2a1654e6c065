package toolswap

import "github.com/prometheus/client_golang/prometheus"

// Metrics - счётчики замены инструментов. Нулевой *Metrics безопасен.
type Metrics struct {
	swaps    prometheus.Counter
	missing  prometheus.Counter
	failures prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil - глобальный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		swaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "toolswap",
			Name:      "swaps_total",
			Help:      "Инструменты, заменённые запасными.",
		}),
		missing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "toolswap",
			Name:      "no_spare_total",
			Help:      "Износ без запасного инструмента в инвентаре.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "toolswap",
			Name:      "failures_total",
			Help:      "Замены, прерванные ошибкой.",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.swaps, m.missing, m.failures)
	return m
}

func (m *Metrics) observeSwap() {
	if m != nil {
		m.swaps.Inc()
	}
}

func (m *Metrics) observeMissing() {
	if m != nil {
		m.missing.Inc()
	}
}

func (m *Metrics) observeFailure() {
	if m != nil {
		m.failures.Inc()
	}
}
