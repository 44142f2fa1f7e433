package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "creditors_outstanding",
			Help: "Creditors with a non-zero balance",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM creditors WHERE balance <> 0")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "settlements_investigate",
			Help: "Active settlements flagged INVESTIGATE",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM settlements WHERE row_status = 'active' AND status = 'INVESTIGATE'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
