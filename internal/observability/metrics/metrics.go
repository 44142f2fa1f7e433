package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "fuelstation_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	readingSubmitTotal   *prometheus.CounterVec
	readingSubmitLatency *prometheus.HistogramVec
	readingRejectedTotal *prometheus.CounterVec

	creditOpsTotal   *prometheus.CounterVec
	creditOpsLatency *prometheus.HistogramVec

	settlementRecordTotal   *prometheus.CounterVec
	settlementRecordLatency *prometheus.HistogramVec
	settlementStatusTotal   *prometheus.CounterVec

	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		readingSubmitTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reading_submit_total",
				Help: "Total reading submissions by result",
			},
			[]string{"result"},
		)
		readingSubmitLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reading_submit_latency_seconds",
				Help:    "Reading submission latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		readingRejectedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reading_rejected_total",
				Help: "Total rejected readings by reason",
			},
			[]string{"reason"},
		)

		creditOpsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "credit_ops_total",
				Help: "Total credit ledger operations by op and result",
			},
			[]string{"op", "result"},
		)
		creditOpsLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "credit_ops_latency_seconds",
				Help:    "Credit ledger operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "result"},
		)

		settlementRecordTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_record_total",
				Help: "Total settlement submissions by result",
			},
			[]string{"result"},
		)
		settlementRecordLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_record_latency_seconds",
				Help:    "Settlement submission latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		settlementStatusTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_status_total",
				Help: "Total recorded settlements by variance status",
			},
			[]string{"status"},
		)

		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_total",
				Help: "Total report requests by report and result",
			},
			[]string{"report", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			readingSubmitTotal,
			readingSubmitLatency,
			readingRejectedTotal,
			creditOpsTotal,
			creditOpsLatency,
			settlementRecordTotal,
			settlementRecordLatency,
			settlementStatusTotal,
			reportTotal,
			reportLatency,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveReadingSubmit records reading submission duration and result.
func ObserveReadingSubmit(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if readingSubmitTotal != nil {
		readingSubmitTotal.WithLabelValues(result).Inc()
	}
	if readingSubmitLatency != nil {
		readingSubmitLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReadingRejected increments the rejected-reading counter.
func IncReadingRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if readingRejectedTotal != nil {
		readingRejectedTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveCreditOp records credit ledger operation latency and result.
func ObserveCreditOp(op, result string, duration time.Duration) {
	if op == "" {
		op = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if creditOpsTotal != nil {
		creditOpsTotal.WithLabelValues(op, result).Inc()
	}
	if creditOpsLatency != nil {
		creditOpsLatency.WithLabelValues(op, result).Observe(duration.Seconds())
	}
}

// ObserveSettlementRecord records settlement submission latency and result.
func ObserveSettlementRecord(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if settlementRecordTotal != nil {
		settlementRecordTotal.WithLabelValues(result).Inc()
	}
	if settlementRecordLatency != nil {
		settlementRecordLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncSettlementStatus counts recorded settlements by variance status.
func IncSettlementStatus(status string) {
	if status == "" {
		status = "unknown"
	}
	if settlementStatusTotal != nil {
		settlementStatusTotal.WithLabelValues(status).Inc()
	}
}

// ObserveReport records report latency and result.
func ObserveReport(report, result string, duration time.Duration) {
	if report == "" {
		report = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportTotal != nil {
		reportTotal.WithLabelValues(report, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(report, result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
