package app

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "daowallet"

// Metrics collects transaction statistics.
type Metrics struct {
	txTotal     *prometheus.CounterVec
	txDuration  *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewMetrics creates all collectors and registers them with given
// registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		txTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tx_total",
			Help:      "Number of delivered transactions by message path and result code.",
		}, []string{"path", "code"}),
		txDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "tx_duration_seconds",
			Help:      "Time spent delivering a transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "proposal_transitions_total",
			Help:      "Number of proposal status transitions.",
		}, []string{"status"}),
	}
	for _, c := range []prometheus.Collector{m.txTotal, m.txDuration, m.transitions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeTx(path string, code uint32, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.txTotal.WithLabelValues(path, strconv.FormatUint(uint64(code), 10)).Inc()
	m.txDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func (m *Metrics) observeTransition(status string) {
	if m == nil || status == "" {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}
