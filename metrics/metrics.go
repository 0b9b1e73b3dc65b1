// Package metrics exposes decoded samples as Prometheus gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bangzek/powerworld-rtu/powerworld"
)

const namespace = "powerworld"

// Sink is a powerworld.Sink keeping the last sample in gauges.
type Sink struct {
	values      *prometheus.GaugeVec
	errorInfo   *prometheus.GaugeVec
	polls       *prometheus.CounterVec
	lastSuccess prometheus.Gauge

	lastError string
}

func New(reg prometheus.Registerer) *Sink {
	s := &Sink{
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "value",
			Help:      "Last decoded value of a heat pump field.",
		}, []string{"field", "unit"}),
		errorInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "error_info",
			Help:      "Current error text, the value is the error level.",
		}, []string{"text"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Polls by result.",
		}, []string{"result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Time of the last published sample.",
		}),
	}
	reg.MustRegister(s.values, s.errorInfo, s.polls, s.lastSuccess)
	s.polls.WithLabelValues("ok")
	s.polls.WithLabelValues("failed")
	return s
}

func (s *Sink) Publish(smp *powerworld.Sample) {
	for _, f := range powerworld.Fields() {
		s.values.WithLabelValues(f.String(), f.Unit()).Set(smp.Value(f))
	}

	if smp.Fault.Text != s.lastError {
		s.errorInfo.DeleteLabelValues(s.lastError)
		s.lastError = smp.Fault.Text
	}
	s.errorInfo.WithLabelValues(smp.Fault.Text).Set(float64(smp.Fault.Level))

	s.polls.WithLabelValues("ok").Inc()
	s.lastSuccess.Set(float64(smp.Time.UnixNano()) / 1e9)
}

// Failed only counts; the gauges keep the last good sample.
func (s *Sink) Failed(error) {
	s.polls.WithLabelValues("failed").Inc()
}
