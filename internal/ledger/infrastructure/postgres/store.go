package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	directory "fuelstation-cloud/internal/directory/domain"
	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
)

// Store runs ledger units of work on Postgres. Each InTx call maps to one
// database transaction; row locks on nozzles and creditors serialize
// concurrent writers.
type Store struct {
	db *sql.DB
}

// NewStore constructs a store.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("ledger store: nil db")
	}
	return &Store{db: db}, nil
}

// InTx runs fn inside one transaction, rolling back on any error.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx application.Tx) error) error {
	if s == nil || s.db == nil {
		return errors.New("ledger store: nil db")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, &ledgerTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type ledgerTx struct {
	tx *sql.Tx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (t *ledgerTx) NozzleForUpdate(ctx context.Context, nozzleID string) (*directory.Nozzle, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, pump_id, station_id, number, fuel_type, status, initial_reading, last_reading, created_at, updated_at
FROM nozzles
WHERE id = $1
FOR UPDATE`, nozzleID)
	var n directory.Nozzle
	err := row.Scan(&n.ID, &n.PumpID, &n.StationID, &n.Number, &n.FuelType, &n.Status, &n.InitialReading, &n.LastReading, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return &n, nil
}

func (t *ledgerTx) UpdateNozzleLastReading(ctx context.Context, nozzleID string, value decimal.Decimal, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
UPDATE nozzles SET last_reading = $2, updated_at = $3 WHERE id = $1`,
		nozzleID, value, at.UTC())
	return err
}

func (t *ledgerTx) HasReadings(ctx context.Context, nozzleID string) (bool, error) {
	var count int
	err := t.tx.QueryRowContext(ctx, `
SELECT COUNT(1) FROM readings WHERE nozzle_id = $1`, nozzleID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const readingColumns = `
id, station_id, nozzle_id, entered_by, reading_date, reading_value, previous_reading,
litres_sold, price_per_litre, total_amount, cash_amount, online_amount, credit_amount,
creditor_id, is_initial, created_at`

func scanReading(row rowScanner) (*ledger.Reading, error) {
	var r ledger.Reading
	var creditorID sql.NullString
	err := row.Scan(
		&r.ID,
		&r.StationID,
		&r.NozzleID,
		&r.EnteredBy,
		&r.ReadingDate,
		&r.ReadingValue,
		&r.PreviousReading,
		&r.LitresSold,
		&r.PricePerLitre,
		&r.TotalAmount,
		&r.CashAmount,
		&r.OnlineAmount,
		&r.CreditAmount,
		&creditorID,
		&r.IsInitial,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.CreditorID = creditorID.String
	r.ReadingDate = r.ReadingDate.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func (t *ledgerTx) LatestReadingOnOrBefore(ctx context.Context, nozzleID string, date time.Time) (*ledger.Reading, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT`+readingColumns+`
FROM readings
WHERE nozzle_id = $1 AND reading_date <= $2
ORDER BY reading_date DESC, created_at DESC
LIMIT 1`, nozzleID, date.UTC())
	reading, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return reading, err
}

func (t *ledgerTx) FirstReadingAfter(ctx context.Context, nozzleID string, date time.Time) (*ledger.Reading, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT`+readingColumns+`
FROM readings
WHERE nozzle_id = $1 AND reading_date > $2
ORDER BY reading_date ASC, created_at ASC
LIMIT 1`, nozzleID, date.UTC())
	reading, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return reading, err
}

func (t *ledgerTx) InsertReading(ctx context.Context, r *ledger.Reading) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO readings (`+readingColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NULLIF($14,''),$15,$16)`,
		r.ID, r.StationID, r.NozzleID, r.EnteredBy, r.ReadingDate.UTC(), r.ReadingValue, r.PreviousReading,
		r.LitresSold, r.PricePerLitre, r.TotalAmount, r.CashAmount, r.OnlineAmount, r.CreditAmount,
		r.CreditorID, r.IsInitial, r.CreatedAt.UTC())
	return err
}

func (t *ledgerTx) UpdateReadingChain(ctx context.Context, r *ledger.Reading) error {
	_, err := t.tx.ExecContext(ctx, `
UPDATE readings
SET previous_reading = $2, litres_sold = $3, total_amount = $4
WHERE id = $1`, r.ID, r.PreviousReading, r.LitresSold, r.TotalAmount)
	return err
}

func (t *ledgerTx) InsertCreditor(ctx context.Context, c *ledger.Creditor) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO creditors (id, station_id, name, credit_limit, credit_period_days, balance, active, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.StationID, c.Name, c.CreditLimit, c.CreditPeriodDays, c.Balance, c.Active, c.UpdatedAt.UTC())
	return err
}

func (t *ledgerTx) CreditorForUpdate(ctx context.Context, creditorID string) (*ledger.Creditor, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, station_id, name, credit_limit, credit_period_days, balance, active, updated_at
FROM creditors
WHERE id = $1
FOR UPDATE`, creditorID)
	var c ledger.Creditor
	err := row.Scan(&c.ID, &c.StationID, &c.Name, &c.CreditLimit, &c.CreditPeriodDays, &c.Balance, &c.Active, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (t *ledgerTx) UpdateCreditorBalance(ctx context.Context, creditorID string, balance decimal.Decimal, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
UPDATE creditors SET balance = $2, updated_at = $3 WHERE id = $1`,
		creditorID, balance, at.UTC())
	return err
}

func (t *ledgerTx) InsertCreditTransaction(ctx context.Context, e *ledger.CreditTransaction) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO credit_transactions
(id, station_id, creditor_id, type, fuel_type, litres, price_per_litre, amount, transaction_date, reading_id, reference, created_at)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7,$8,$9,NULLIF($10,''),NULLIF($11,''),$12)`,
		e.ID, e.StationID, e.CreditorID, string(e.Type), e.FuelType, e.Litres, e.PricePerLitre,
		e.Amount, e.TransactionDate.UTC(), e.ReadingID, e.Reference, e.CreatedAt.UTC())
	return err
}

func (t *ledgerTx) SumCashForDay(ctx context.Context, stationID string, day time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := t.tx.QueryRowContext(ctx, `
SELECT COALESCE(SUM(cash_amount), 0)
FROM readings
WHERE station_id = $1 AND reading_date = $2 AND NOT is_initial`,
		stationID, day.UTC()).Scan(&sum)
	return sum, err
}

func scanSettlement(row rowScanner) (*ledger.Settlement, error) {
	var s ledger.Settlement
	err := row.Scan(
		&s.ID,
		&s.StationID,
		&s.Day,
		&s.ExpectedCash,
		&s.ActualCash,
		&s.Variance,
		&s.VariancePercent,
		&s.Status,
		&s.RowStatus,
		&s.Version,
		&s.Notes,
		&s.RecordedBy,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Day = s.Day.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

const settlementColumns = `
id, station_id, day, expected_cash, actual_cash, variance, variance_percent,
status, row_status, version, notes, recorded_by, created_at`

func (t *ledgerTx) ActiveSettlement(ctx context.Context, stationID string, day time.Time) (*ledger.Settlement, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT`+settlementColumns+`
FROM settlements
WHERE station_id = $1 AND day = $2 AND row_status = $3`,
		stationID, day.UTC(), ledger.SettlementActive)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return settlement, err
}

func (t *ledgerTx) MarkSettlementSuperseded(ctx context.Context, settlementID string) error {
	_, err := t.tx.ExecContext(ctx, `
UPDATE settlements SET row_status = $2 WHERE id = $1`,
		settlementID, ledger.SettlementSuperseded)
	return err
}

func (t *ledgerTx) InsertSettlement(ctx context.Context, s *ledger.Settlement) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO settlements (`+settlementColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		s.ID, s.StationID, s.Day.UTC(), s.ExpectedCash, s.ActualCash, s.Variance, s.VariancePercent,
		s.Status, s.RowStatus, s.Version, s.Notes, s.RecordedBy, s.CreatedAt.UTC())
	return err
}

func (t *ledgerTx) LinkSettlementReadings(ctx context.Context, settlementID, stationID string, day time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO settlement_readings (settlement_id, reading_id)
SELECT $1, id FROM readings
WHERE station_id = $2 AND reading_date = $3 AND NOT is_initial`,
		settlementID, stationID, day.UTC())
	return err
}
