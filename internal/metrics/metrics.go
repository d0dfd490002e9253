// Package metrics exposes prometheus counters for draws and fulfillment.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LuckyMetrics groups the draw engine collectors. A nil *LuckyMetrics is a
// valid no-op recorder.
type LuckyMetrics struct {
	draws          *prometheus.CounterVec
	quotaRejected  *prometheus.CounterVec
	ledgerFailures prometheus.Counter
	transitions    *prometheus.CounterVec
}

var (
	luckyOnce     sync.Once
	luckyRegistry *LuckyMetrics
)

// Lucky returns the process-wide collectors registered on the default registry.
func Lucky() *LuckyMetrics {
	luckyOnce.Do(func() {
		luckyRegistry = New(prometheus.DefaultRegisterer)
	})
	return luckyRegistry
}

// Handler exposes the default registry, which Lucky registers on.
func Handler() http.Handler {
	return promhttp.Handler()
}

// New creates collectors registered on reg.
func New(reg prometheus.Registerer) *LuckyMetrics {
	m := &LuckyMetrics{
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lucky_draws_total",
			Help: "Draw outcomes by goods type.",
		}, []string{"goods_type"}),
		quotaRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lucky_quota_rejected_total",
			Help: "Wins turned into no-win because the tier's daily quota was used up.",
		}, []string{"tier"}),
		ledgerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lucky_ledger_write_failures_total",
			Help: "Draws that failed because the ledger entry could not be written.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lucky_fulfillment_transitions_total",
			Help: "Fulfillment transitions by name and result.",
		}, []string{"transition", "result"}),
	}
	reg.MustRegister(m.draws, m.quotaRejected, m.ledgerFailures, m.transitions)
	return m
}

// ObserveDraw counts a draw outcome.
func (m *LuckyMetrics) ObserveDraw(goodsType string) {
	if m == nil {
		return
	}
	if goodsType == "" {
		goodsType = "unknown"
	}
	m.draws.WithLabelValues(goodsType).Inc()
}

// ObserveQuotaRejected counts a win downgraded by the daily quota.
func (m *LuckyMetrics) ObserveQuotaRejected(tier string) {
	if m == nil {
		return
	}
	m.quotaRejected.WithLabelValues(tier).Inc()
}

// ObserveLedgerFailure counts a failed ledger write.
func (m *LuckyMetrics) ObserveLedgerFailure() {
	if m == nil {
		return
	}
	m.ledgerFailures.Inc()
}

// ObserveTransition counts a fulfillment transition attempt.
func (m *LuckyMetrics) ObserveTransition(transition string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.transitions.WithLabelValues(transition, result).Inc()
}
