package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
)

// ReportStore serves the derived read-only reports straight from SQL
// aggregates. It never takes row locks.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore constructs a report store.
func NewReportStore(db *sql.DB) (*ReportStore, error) {
	if db == nil {
		return nil, errors.New("report store: nil db")
	}
	return &ReportStore{db: db}, nil
}

// OutstandingBalances returns creditors with a positive balance and the date
// of their last credit activity. Overpaid creditors hold a negative balance
// and owe nothing, so they are filtered out here.
func (r *ReportStore) OutstandingBalances(ctx context.Context, stationID string) ([]application.OutstandingBalance, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.station_id, c.name, c.credit_limit, c.credit_period_days, c.balance, c.active, c.updated_at,
       COALESCE(MAX(t.transaction_date), c.updated_at)
FROM creditors c
LEFT JOIN credit_transactions t ON t.creditor_id = c.id
WHERE c.station_id = $1 AND c.balance > 0
GROUP BY c.id, c.station_id, c.name, c.credit_limit, c.credit_period_days, c.balance, c.active, c.updated_at
ORDER BY c.name ASC`, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []application.OutstandingBalance
	for rows.Next() {
		var b application.OutstandingBalance
		if err := rows.Scan(
			&b.Creditor.ID,
			&b.Creditor.StationID,
			&b.Creditor.Name,
			&b.Creditor.CreditLimit,
			&b.Creditor.CreditPeriodDays,
			&b.Creditor.Balance,
			&b.Creditor.Active,
			&b.Creditor.UpdatedAt,
			&b.LastTransactionDate,
		); err != nil {
			return nil, err
		}
		b.Creditor.UpdatedAt = b.Creditor.UpdatedAt.UTC()
		b.LastTransactionDate = b.LastTransactionDate.UTC()
		result = append(result, b)
	}
	return result, rows.Err()
}

// SalesTotals returns gross sales and credit extended over [from, to).
// Initial readings never carry sales and are excluded by construction.
func (r *ReportStore) SalesTotals(ctx context.Context, stationID string, from, to time.Time) (gross, credit decimal.Decimal, err error) {
	err = r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(credit_amount), 0)
FROM readings
WHERE station_id = $1 AND reading_date >= $2 AND reading_date < $3 AND NOT is_initial`,
		stationID, from.UTC(), to.UTC()).Scan(&gross, &credit)
	return gross, credit, err
}

// VarianceTotal sums signed variances of active settlements over [from, to).
func (r *ReportStore) VarianceTotal(ctx context.Context, stationID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(variance), 0)
FROM settlements
WHERE station_id = $1 AND day >= $2 AND day < $3 AND row_status = $4`,
		stationID, from.UTC(), to.UTC(), ledger.SettlementActive).Scan(&total)
	return total, err
}

// DayReport builds the day summary: priced readings, payment totals and
// the active settlement when recorded.
func (r *ReportStore) DayReport(ctx context.Context, stationID string, day time.Time) (*application.DayReport, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT nozzle_id, reading_value, previous_reading, litres_sold, price_per_litre,
       total_amount, cash_amount, online_amount, credit_amount
FROM readings
WHERE station_id = $1 AND reading_date = $2 AND NOT is_initial
ORDER BY nozzle_id ASC, created_at ASC`, stationID, day.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := &application.DayReport{StationID: stationID, Day: day.UTC()}
	for rows.Next() {
		var line application.DayReportLine
		if err := rows.Scan(
			&line.NozzleID,
			&line.ReadingValue,
			&line.PreviousReading,
			&line.LitresSold,
			&line.PricePerLitre,
			&line.TotalAmount,
			&line.CashAmount,
			&line.OnlineAmount,
			&line.CreditAmount,
		); err != nil {
			return nil, err
		}
		report.Lines = append(report.Lines, line)
		report.TotalLitres = report.TotalLitres.Add(line.LitresSold)
		report.GrossSales = report.GrossSales.Add(line.TotalAmount)
		report.CashTotal = report.CashTotal.Add(line.CashAmount)
		report.OnlineTotal = report.OnlineTotal.Add(line.OnlineAmount)
		report.CreditTotal = report.CreditTotal.Add(line.CreditAmount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var s ledger.Settlement
	err = r.db.QueryRowContext(ctx, `
SELECT id, station_id, day, expected_cash, actual_cash, variance, variance_percent,
       status, row_status, version, notes, recorded_by, created_at
FROM settlements
WHERE station_id = $1 AND day = $2 AND row_status = $3`,
		stationID, day.UTC(), ledger.SettlementActive).Scan(
		&s.ID, &s.StationID, &s.Day, &s.ExpectedCash, &s.ActualCash, &s.Variance, &s.VariancePercent,
		&s.Status, &s.RowStatus, &s.Version, &s.Notes, &s.RecordedBy, &s.CreatedAt)
	switch {
	case err == nil:
		s.Day = s.Day.UTC()
		s.CreatedAt = s.CreatedAt.UTC()
		report.Settlement = &s
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, err
	}
	return report, nil
}

// CreditorByID loads one creditor without a lock.
func (r *ReportStore) CreditorByID(ctx context.Context, creditorID string) (*ledger.Creditor, error) {
	var c ledger.Creditor
	err := r.db.QueryRowContext(ctx, `
SELECT id, station_id, name, credit_limit, credit_period_days, balance, active, updated_at
FROM creditors
WHERE id = $1`, creditorID).Scan(
		&c.ID, &c.StationID, &c.Name, &c.CreditLimit, &c.CreditPeriodDays, &c.Balance, &c.Active, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrCreditorNotFound
	}
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// Creditors lists a station's creditors.
func (r *ReportStore) Creditors(ctx context.Context, stationID string) ([]ledger.Creditor, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, station_id, name, credit_limit, credit_period_days, balance, active, updated_at
FROM creditors
WHERE station_id = $1
ORDER BY name ASC`, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ledger.Creditor
	for rows.Next() {
		var c ledger.Creditor
		if err := rows.Scan(&c.ID, &c.StationID, &c.Name, &c.CreditLimit, &c.CreditPeriodDays, &c.Balance, &c.Active, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.UpdatedAt = c.UpdatedAt.UTC()
		result = append(result, c)
	}
	return result, rows.Err()
}
