package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the ledger engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	opDuration       *prometheus.HistogramVec
	transfersTotal   *prometheus.CounterVec
	purchasesTotal   *prometheus.CounterVec
	persistenceTotal *prometheus.CounterVec
}

// LedgerSnapshot is a point-in-time read of the ledger counters,
// served by GET /v1/metrics/ledger.
type LedgerSnapshot struct {
	TransfersProcessed float64 `json:"transfers_processed"`
	TransfersRejected  float64 `json:"transfers_rejected"`
	PurchasesProcessed float64 `json:"purchases_processed"`
	PurchasesRejected  float64 `json:"purchases_rejected"`
	TransferErrorRate  float64 `json:"transfer_error_rate"`
	PurchaseErrorRate  float64 `json:"purchase_error_rate"`
	SaveFailures       float64 `json:"save_failures"`
	LoadFallbacks      float64 `json:"load_fallbacks"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		opDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transfers_total",
				Help: "Bank transfers by outcome.",
			},
			[]string{"outcome"},
		),
		purchasesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_purchases_total",
				Help: "Store purchases by outcome.",
			},
			[]string{"outcome"},
		),
		persistenceTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_persistence_total",
				Help: "Persistence boundary events by kind.",
			},
			[]string{"event"},
		),
	}
}

// RecordOpDuration records the duration of a ledger operation.
func (m *Metrics) RecordOpDuration(operation string, d time.Duration) {
	m.opDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrTransfer counts a transfer outcome ("processed" or "rejected").
func (m *Metrics) IncrTransfer(outcome string) {
	m.transfersTotal.WithLabelValues(outcome).Inc()
}

// IncrPurchase counts a purchase outcome ("processed" or "rejected").
func (m *Metrics) IncrPurchase(outcome string) {
	m.purchasesTotal.WithLabelValues(outcome).Inc()
}

// IncrPersistence counts a persistence event ("load", "load_fallback",
// "save", "save_failure").
func (m *Metrics) IncrPersistence(event string) {
	m.persistenceTotal.WithLabelValues(event).Inc()
}

// GetLedgerSnapshot reads the current counter values back out of the
// registry for the snapshot endpoint.
func (m *Metrics) GetLedgerSnapshot() *LedgerSnapshot {
	snap := &LedgerSnapshot{
		TransfersProcessed: getCounterValue(m.transfersTotal, "processed"),
		TransfersRejected:  getCounterValue(m.transfersTotal, "rejected"),
		PurchasesProcessed: getCounterValue(m.purchasesTotal, "processed"),
		PurchasesRejected:  getCounterValue(m.purchasesTotal, "rejected"),
		SaveFailures:       getCounterValue(m.persistenceTotal, "save_failure"),
		LoadFallbacks:      getCounterValue(m.persistenceTotal, "load_fallback"),
	}

	if total := snap.TransfersProcessed + snap.TransfersRejected; total > 0 {
		snap.TransferErrorRate = snap.TransfersRejected / total
	}
	if total := snap.PurchasesProcessed + snap.PurchasesRejected; total > 0 {
		snap.PurchaseErrorRate = snap.PurchasesRejected / total
	}
	return snap
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
