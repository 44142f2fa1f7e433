package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	directory "fuelstation-cloud/internal/directory/domain"
	ledger "fuelstation-cloud/internal/ledger/domain"
)

// Tx is the set of ledger operations available inside one database
// transaction. Every mutating use case runs against exactly one Tx; a
// failure anywhere rolls the whole transaction back.
type Tx interface {
	// NozzleForUpdate loads a nozzle and holds it for the transaction so
	// the last-reading cache and the reading chain cannot race.
	NozzleForUpdate(ctx context.Context, nozzleID string) (*directory.Nozzle, error)
	UpdateNozzleLastReading(ctx context.Context, nozzleID string, value decimal.Decimal, at time.Time) error

	HasReadings(ctx context.Context, nozzleID string) (bool, error)
	// LatestReadingOnOrBefore resolves the predecessor of a reading dated
	// on the given day: the reading with the largest (date, insertion)
	// order whose date is on or before it.
	LatestReadingOnOrBefore(ctx context.Context, nozzleID string, date time.Time) (*ledger.Reading, error)
	// FirstReadingAfter resolves the immediate follower of a backdated
	// insert: the earliest reading strictly after the given day.
	FirstReadingAfter(ctx context.Context, nozzleID string, date time.Time) (*ledger.Reading, error)
	InsertReading(ctx context.Context, reading *ledger.Reading) error
	// UpdateReadingChain persists a rechained reading's previous reading,
	// litres sold and total amount.
	UpdateReadingChain(ctx context.Context, reading *ledger.Reading) error

	InsertCreditor(ctx context.Context, creditor *ledger.Creditor) error
	// CreditorForUpdate loads a creditor under a row lock, serializing
	// concurrent balance updates against the same creditor.
	CreditorForUpdate(ctx context.Context, creditorID string) (*ledger.Creditor, error)
	UpdateCreditorBalance(ctx context.Context, creditorID string, balance decimal.Decimal, at time.Time) error
	InsertCreditTransaction(ctx context.Context, entry *ledger.CreditTransaction) error

	// SumCashForDay totals cash amounts of non-initial readings for the
	// station day. The server-side source of expected cash.
	SumCashForDay(ctx context.Context, stationID string, day time.Time) (decimal.Decimal, error)
	ActiveSettlement(ctx context.Context, stationID string, day time.Time) (*ledger.Settlement, error)
	MarkSettlementSuperseded(ctx context.Context, settlementID string) error
	InsertSettlement(ctx context.Context, settlement *ledger.Settlement) error
	// LinkSettlementReadings ties the settlement to the readings whose
	// cash amounts produced its expected cash.
	LinkSettlementReadings(ctx context.Context, settlementID, stationID string, day time.Time) error
}

// Store runs a unit of work in one database transaction.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// OutstandingBalance pairs a creditor with its last credit activity.
type OutstandingBalance struct {
	Creditor            ledger.Creditor
	LastTransactionDate time.Time
}

// DayReportLine is one priced reading on a station day report.
type DayReportLine struct {
	NozzleID        string
	ReadingValue    decimal.Decimal
	PreviousReading decimal.Decimal
	LitresSold      decimal.Decimal
	PricePerLitre   decimal.Decimal
	TotalAmount     decimal.Decimal
	CashAmount      decimal.Decimal
	OnlineAmount    decimal.Decimal
	CreditAmount    decimal.Decimal
}

// DayReport summarizes one station day: its priced readings, payment
// totals and the active settlement when one exists.
type DayReport struct {
	StationID   string
	Day         time.Time
	Lines       []DayReportLine
	TotalLitres decimal.Decimal
	GrossSales  decimal.Decimal
	CashTotal   decimal.Decimal
	OnlineTotal decimal.Decimal
	CreditTotal decimal.Decimal
	Settlement  *ledger.Settlement
}

// ReportStore serves the read-only derived reports. No locking; safe to
// run fully concurrently.
type ReportStore interface {
	OutstandingBalances(ctx context.Context, stationID string) ([]OutstandingBalance, error)
	// SalesTotals returns gross sales and credit extended over [from, to).
	SalesTotals(ctx context.Context, stationID string, from, to time.Time) (gross, credit decimal.Decimal, err error)
	// VarianceTotal sums active settlement variances over [from, to).
	VarianceTotal(ctx context.Context, stationID string, from, to time.Time) (decimal.Decimal, error)
	Creditors(ctx context.Context, stationID string) ([]ledger.Creditor, error)
	// CreditorByID loads one creditor without a lock.
	CreditorByID(ctx context.Context, creditorID string) (*ledger.Creditor, error)
	DayReport(ctx context.Context, stationID string, day time.Time) (*DayReport, error)
}

// PriceResolver resolves the price effective on a date.
type PriceResolver interface {
	Resolve(ctx context.Context, stationID, fuelType string, date time.Time) (decimal.Decimal, bool, error)
}

// StationDirectory exposes the external station directory.
type StationDirectory interface {
	Station(ctx context.Context, stationID string) (*directory.Station, error)
}

// ShiftChecker answers whether a caller has an open shift.
type ShiftChecker interface {
	HasOpenShift(ctx context.Context, stationID, userID string, day time.Time) (bool, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// DayOf truncates a timestamp to its UTC day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
