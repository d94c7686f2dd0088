package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder on a prometheus registry.
type PrometheusRecorder struct {
	verifications *prometheus.CounterVec
	ledgerApplies *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a recorder and registers its collectors on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	recorder := &PrometheusRecorder{
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paygate",
			Name:      "verifications_total",
			Help:      "Completed payment verification passes by terminal status.",
		}, []string{"status", "chain_id"}),
		ledgerApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paygate",
			Name:      "ledger_applies_total",
			Help:      "Ledger apply attempts by result.",
		}, []string{"result"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paygate",
			Name:      "rpc_duration_seconds",
			Help:      "Latency of blockchain RPC attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "chain_id", "success"}),
	}
	reg.MustRegister(recorder.verifications, recorder.ledgerApplies, recorder.rpcDuration)
	return recorder
}

func (r *PrometheusRecorder) AddVerification(status string, chainID uint64) {
	r.verifications.WithLabelValues(status, strconv.FormatUint(chainID, 10)).Inc()
}

func (r *PrometheusRecorder) AddLedgerApply(result string) {
	r.ledgerApplies.WithLabelValues(result).Inc()
}

func (r *PrometheusRecorder) ObserveRPCDuration(method string, chainID uint64, success bool, d time.Duration) {
	r.rpcDuration.WithLabelValues(method, strconv.FormatUint(chainID, 10), strconv.FormatBool(success)).Observe(d.Seconds())
}
