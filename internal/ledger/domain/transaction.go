package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a credit ledger entry. Credit raises
// the creditor balance, settlement lowers it; the amount itself is always
// positive.
type TransactionType string

const (
	TransactionCredit     TransactionType = "credit"
	TransactionSettlement TransactionType = "settlement"
	TransactionAdjustment TransactionType = "adjustment"
)

// CreditTransaction is an append-only credit ledger entry.
type CreditTransaction struct {
	ID              string
	StationID       string
	CreditorID      string
	Type            TransactionType
	FuelType        string
	Litres          decimal.Decimal
	PricePerLitre   decimal.Decimal
	Amount          decimal.Decimal
	TransactionDate time.Time
	ReadingID       string
	Reference       string
	CreatedAt       time.Time
}

// NewCreditEntry builds a balance-raising ledger entry for a fuel sale.
func NewCreditEntry(stationID, creditorID, fuelType string, litres, pricePerLitre, amount decimal.Decimal, date time.Time, readingID string, now time.Time) (*CreditTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &CreditTransaction{
		ID:              NewID("ctx"),
		StationID:       stationID,
		CreditorID:      creditorID,
		Type:            TransactionCredit,
		FuelType:        fuelType,
		Litres:          litres,
		PricePerLitre:   pricePerLitre,
		Amount:          RoundMoney(amount),
		TransactionDate: date,
		ReadingID:       readingID,
		CreatedAt:       now.UTC(),
	}, nil
}

// NewSettlementEntry builds a balance-lowering ledger entry for a repayment.
func NewSettlementEntry(stationID, creditorID string, amount decimal.Decimal, date time.Time, reference string, now time.Time) (*CreditTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &CreditTransaction{
		ID:              NewID("ctx"),
		StationID:       stationID,
		CreditorID:      creditorID,
		Type:            TransactionSettlement,
		Amount:          RoundMoney(amount),
		TransactionDate: date,
		Reference:       reference,
		CreatedAt:       now.UTC(),
	}, nil
}

// Signed returns the balance effect of the entry.
func (t *CreditTransaction) Signed() decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	switch t.Type {
	case TransactionSettlement:
		return t.Amount.Neg()
	default:
		return t.Amount
	}
}
