package capacitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики правил. Нулевой *Metrics безопасен: вызовы ничего не делают.
type Metrics struct {
	activations   *prometheus.CounterVec
	componentSize *prometheus.HistogramVec
	broken        *prometheus.CounterVec
	failed        *prometheus.CounterVec
	spawnFailures *prometheus.CounterVec
	yieldUnits    *prometheus.CounterVec
	panics        *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil - глобальный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "capacitor",
			Name:      "activations_total",
			Help:      "Срабатывания правил с запланированным пакетом.",
		}, []string{"rule"}),
		componentSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "addons",
			Subsystem: "capacitor",
			Name:      "component_size",
			Help:      "Размер найденной связной области.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 100, 128, 256},
		}, []string{"rule"}),
		broken: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "capacitor",
			Name:      "cells_broken_total",
			Help:      "Ячейки, сломанные пакетами.",
		}, []string{"rule"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "capacitor",
			Name:      "cells_failed_total",
			Help:      "Ячейки, которые пакет не смог сломать.",
		}, []string{"rule"}),
		spawnFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "capacitor",
			Name:      "spawn_failures_total",
			Help:      "Неудачные вызовы создания выпадения.",
		}, []string{"rule"}),
		yieldUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "capacitor",
			Name:      "yield_units_total",
			Help:      "Созданные единицы добычи.",
		}, []string{"rule"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "addons",
			Subsystem: "capacitor",
			Name:      "activation_errors_total",
			Help:      "Непредвиденные ошибки на границе активации.",
		}, []string{"rule"}),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.activations, m.componentSize, m.broken, m.failed, m.spawnFailures, m.yieldUnits, m.panics)
	return m
}

func (m *Metrics) observeActivation(rule string, size int) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(rule).Inc()
	m.componentSize.WithLabelValues(rule).Observe(float64(size))
}

func (m *Metrics) observeBatch(rule string, res BatchResult) {
	if m == nil {
		return
	}
	m.broken.WithLabelValues(rule).Add(float64(res.TotalBroken))
	m.failed.WithLabelValues(rule).Add(float64(res.ErrorCount))
	m.spawnFailures.WithLabelValues(rule).Add(float64(res.SpawnFailures))
	m.yieldUnits.WithLabelValues(rule).Add(float64(res.Spawned))
}

func (m *Metrics) observeActivationError(rule string) {
	if m == nil {
		return
	}
	m.panics.WithLabelValues(rule).Inc()
}
