package delta2html

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счетчики преобразований сервиса.
type Metrics struct {
	conversions   *prometheus.CounterVec
	malformed     prometheus.Counter
	scriptErrors  *prometheus.CounterVec
	scriptReloads *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delta2html",
			Name:      "conversions_total",
			Help:      "Converted documents by output format",
		}, []string{"format"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delta2html",
			Name:      "malformed_documents_total",
			Help:      "Documents rejected by the operation classifier",
		}),
		scriptErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delta2html",
			Name:      "render_script_errors_total",
			Help:      "Custom render script failures by error code",
		}, []string{"code"}),
		scriptReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delta2html",
			Name:      "render_script_reloads_total",
			Help:      "Custom render script reloads by result",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.conversions, m.malformed, m.scriptErrors, m.scriptReloads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
