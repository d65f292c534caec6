package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "market_"

	resultSuccess = "success"
	resultError   = "error"

	tradeModeSingle = "single"
	tradeModeBatch  = "batch"
)

var (
	registerOnce sync.Once

	attestationsTotal  *prometheus.CounterVec
	attestationLatency *prometheus.HistogramVec

	claimsTotal   *prometheus.CounterVec
	claimsLatency *prometheus.HistogramVec

	ordersPlacedTotal *prometheus.CounterVec

	tradesTotal  *prometheus.CounterVec
	tradeLatency *prometheus.HistogramVec

	burnsTotal *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	consumerLag *prometheus.GaugeVec

	reconcileRunsTotal   *prometheus.CounterVec
	reconcileRunDuration prometheus.Histogram
	reconcileAlertsTotal prometheus.Counter
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		attestationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "attestations_total",
				Help: "Total production attestations by result",
			},
			[]string{"result"},
		)
		attestationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "attestation_latency_seconds",
				Help:    "Attestation handling latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		claimsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "claims_total",
				Help: "Total credit claims by result",
			},
			[]string{"result"},
		)
		claimsLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "claim_latency_seconds",
				Help:    "Claim handling latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		ordersPlacedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "orders_placed_total",
				Help: "Total sell orders placed by result",
			},
			[]string{"result"},
		)

		tradesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "trades_total",
				Help: "Total settlement attempts by mode and result",
			},
			[]string{"mode", "result"},
		)
		tradeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "trade_latency_seconds",
				Help:    "Settlement latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode", "result"},
		)

		burnsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "burns_total",
				Help: "Total credit burns by initiator",
			},
			[]string{"initiator"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total trade report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Trade report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		consumerLag = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "event_consumer_lag_seconds",
				Help: "Consumer processing lag in seconds",
			},
			[]string{"consumer"},
		)

		reconcileRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_runs_total",
				Help: "Total reconciliation runs by status",
			},
			[]string{"status"},
		)
		reconcileRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "reconcile_run_duration_seconds",
			Help:    "Reconciliation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		})
		reconcileAlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "reconcile_alerts_total",
			Help: "Total reconciliation alerts sent",
		})

		prometheus.MustRegister(
			attestationsTotal,
			attestationLatency,
			claimsTotal,
			claimsLatency,
			ordersPlacedTotal,
			tradesTotal,
			tradeLatency,
			burnsTotal,
			reportExportTotal,
			reportExportLatency,
			consumerLag,
			reconcileRunsTotal,
			reconcileRunDuration,
			reconcileAlertsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveAttestation records attestation duration and result.
func ObserveAttestation(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if attestationsTotal != nil {
		attestationsTotal.WithLabelValues(result).Inc()
	}
	if attestationLatency != nil {
		attestationLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveClaim records claim duration and result.
func ObserveClaim(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if claimsTotal != nil {
		claimsTotal.WithLabelValues(result).Inc()
	}
	if claimsLatency != nil {
		claimsLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncOrderPlaced increments the order placement counter.
func IncOrderPlaced(result string) {
	if result == "" {
		result = resultSuccess
	}
	if ordersPlacedTotal != nil {
		ordersPlacedTotal.WithLabelValues(result).Inc()
	}
}

// ObserveTrade records settlement duration by mode and result.
func ObserveTrade(mode, result string, duration time.Duration) {
	if mode == "" {
		mode = tradeModeSingle
	}
	if result == "" {
		result = resultSuccess
	}
	if tradesTotal != nil {
		tradesTotal.WithLabelValues(mode, result).Inc()
	}
	if tradeLatency != nil {
		tradeLatency.WithLabelValues(mode, result).Observe(duration.Seconds())
	}
}

// IncBurn increments the burn counter by initiator kind.
func IncBurn(initiator string) {
	if initiator == "" {
		initiator = "unknown"
	}
	if burnsTotal != nil {
		burnsTotal.WithLabelValues(initiator).Inc()
	}
}

// ObserveReportExport records export latency by format and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveConsumerLag sets consumer lag in seconds.
func ObserveConsumerLag(consumer string, lag time.Duration) {
	if consumer == "" {
		consumer = "unknown"
	}
	if lag < 0 {
		lag = 0
	}
	if consumerLag != nil {
		consumerLag.WithLabelValues(consumer).Set(lag.Seconds())
	}
}

// ObserveReconcileRun records a reconciliation run outcome.
func ObserveReconcileRun(status string, duration time.Duration) {
	if status == "" {
		status = resultSuccess
	}
	if reconcileRunsTotal != nil {
		reconcileRunsTotal.WithLabelValues(status).Inc()
	}
	if reconcileRunDuration != nil {
		reconcileRunDuration.Observe(duration.Seconds())
	}
}

// IncReconcileAlert increments the reconciliation alert counter.
func IncReconcileAlert() {
	if reconcileAlertsTotal != nil {
		reconcileAlertsTotal.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	TradeModeSingle = tradeModeSingle
	TradeModeBatch  = tradeModeBatch
)
