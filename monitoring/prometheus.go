package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/mezonai/qledger/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type TxRejectedReason string

var (
	TxMalformedInput   TxRejectedReason = "malformed_input"
	TxInvalidSignature TxRejectedReason = "invalid_signature"
	TxDuplicated       TxRejectedReason = "duplicated"
	TxJournalFailure   TxRejectedReason = "journal_failure"
	TxRejectedUnknown  TxRejectedReason = "other"
)

type ledgerPromMetrics struct {
	admittedTxCount prometheus.Counter
	rejectedTxCount *prometheus.CounterVec
	signedTxCount   prometheus.Counter
	ledgerSize      prometheus.Gauge
	verifyDuration  prometheus.Histogram
	restoredTxCount prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		admittedTxCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "qledger_admitted_tx_count",
				Help: "The total number of transactions admitted into a ledger",
			},
		),
		rejectedTxCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qledger_rejected_tx_count",
				Help: "The total number of rejected transactions",
			},
			[]string{"reason"},
		),
		signedTxCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "qledger_signed_tx_count",
				Help: "The total number of payloads signed in this process",
			},
		),
		ledgerSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "qledger_ledger_size",
				Help: "Number of entries in the most recently updated ledger",
			},
		),
		verifyDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qledger_verify_duration_seconds",
				Help:    "Latency of a single post-quantum signature verification",
				Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
			},
		),
		restoredTxCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "qledger_restored_tx_count",
				Help: "The total number of journal entries replayed into a ledger",
			},
		),
	}
}

var (
	metricsOnce   sync.Once
	ledgerMetrics *ledgerPromMetrics
)

// InitMetrics registers the collectors with the default registry. It is
// idempotent and called implicitly by every recorder.
func InitMetrics() {
	metricsOnce.Do(func() {
		ledgerMetrics = newLedgerPromMetrics()
	})
}

func metrics() *ledgerPromMetrics {
	InitMetrics()
	return ledgerMetrics
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	InitMetrics()
	mux.Handle("/metrics", promhttp.Handler())
}

func RecordAdmittedTx() {
	metrics().admittedTxCount.Inc()
}

func RecordRejectedTx(reason TxRejectedReason) {
	metrics().rejectedTxCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func IncreaseSignedTxCount() {
	metrics().signedTxCount.Inc()
}

func SetLedgerSize(size int) {
	metrics().ledgerSize.Set(float64(size))
}

func RecordVerifyDuration(duration time.Duration) {
	metrics().verifyDuration.Observe(duration.Seconds())
}

func RecordRestoredTx(count int) {
	metrics().restoredTxCount.Add(float64(count))
}
