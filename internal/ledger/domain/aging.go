package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aging buckets for outstanding creditor balances.
const (
	BucketCurrent = "current"
	BucketOverdue = "overdue"
)

// AgingEntry is one outstanding creditor balance with its bucket.
type AgingEntry struct {
	CreditorID          string
	Name                string
	Balance             decimal.Decimal
	LastTransactionDate time.Time
	DueDate             time.Time
	Bucket              string
	DaysOverdue         int
}

// BucketBalance places a balance relative to its due date. The due date is
// the last credit transaction date plus the creditor's credit period.
func BucketBalance(asOf, lastTransaction time.Time, creditPeriodDays int) (dueDate time.Time, bucket string, daysOverdue int) {
	dueDate = lastTransaction.AddDate(0, 0, creditPeriodDays)
	if !dueDate.Before(asOf) {
		return dueDate, BucketCurrent, 0
	}
	daysOverdue = int(asOf.Sub(dueDate).Hours() / 24)
	return dueDate, BucketOverdue, daysOverdue
}

// IncomeStatement reconciles a period's sales against cash actually kept:
// net cash income = gross sales - credit extended - |cash variance|.
type IncomeStatement struct {
	StationID      string
	From           time.Time
	To             time.Time
	GrossSales     decimal.Decimal
	CreditExtended decimal.Decimal
	CashVariance   decimal.Decimal
	NetCashIncome  decimal.Decimal
}

// BuildIncomeStatement derives the net figure from the period aggregates.
// The variance enters as an absolute loss regardless of sign: an overage is
// unexplained money, not income.
func BuildIncomeStatement(stationID string, from, to time.Time, gross, credit, variance decimal.Decimal) IncomeStatement {
	return IncomeStatement{
		StationID:      stationID,
		From:           from,
		To:             to,
		GrossSales:     RoundMoney(gross),
		CreditExtended: RoundMoney(credit),
		CashVariance:   RoundMoney(variance),
		NetCashIncome:  RoundMoney(gross.Sub(credit).Sub(variance.Abs())),
	}
}
