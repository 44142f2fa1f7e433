package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSplit divides a sale total across cash, online and credit.
// Direction is always a payment toward the sale; components are non-negative.
type PaymentSplit struct {
	Cash       decimal.Decimal
	Online     decimal.Decimal
	Credit     decimal.Decimal
	CreditorID string
}

// Validate checks the split against a sale total. The sum must match the
// total within PaymentTolerance, no component may be negative, and a credit
// component requires a creditor reference.
func (p PaymentSplit) Validate(total decimal.Decimal) error {
	if p.Cash.IsNegative() || p.Online.IsNegative() || p.Credit.IsNegative() {
		return ErrNegativeAmount
	}
	sum := p.Cash.Add(p.Online).Add(p.Credit)
	if sum.Sub(total).Abs().Cmp(PaymentTolerance) >= 0 {
		return ErrPaymentSplitMismatch
	}
	if p.Credit.IsPositive() && p.CreditorID == "" {
		return ErrCreditorRequired
	}
	return nil
}

// Reading is one priced meter reading for a nozzle.
type Reading struct {
	ID              string
	StationID       string
	NozzleID        string
	EnteredBy       string
	ReadingDate     time.Time
	ReadingValue    decimal.Decimal
	PreviousReading decimal.Decimal
	LitresSold      decimal.Decimal
	PricePerLitre   decimal.Decimal
	TotalAmount     decimal.Decimal
	CashAmount      decimal.Decimal
	OnlineAmount    decimal.Decimal
	CreditAmount    decimal.Decimal
	CreditorID      string
	IsInitial       bool
	CreatedAt       time.Time
}

// ComputeSale derives litres sold and the rounded sale amount from a meter
// delta. The reading value may never fall below its predecessor.
func ComputeSale(readingValue, previous, pricePerLitre decimal.Decimal) (litres, amount decimal.Decimal, err error) {
	if readingValue.Cmp(previous) < 0 {
		return decimal.Zero, decimal.Zero, ErrReadingMustIncrease
	}
	litres = RoundLitres(readingValue.Sub(previous))
	amount = RoundMoney(litres.Mul(pricePerLitre))
	return litres, amount, nil
}

// NewReading builds a priced reading and validates its payment split.
func NewReading(stationID, nozzleID, enteredBy string, readingDate time.Time, readingValue, previous, pricePerLitre decimal.Decimal, split PaymentSplit, now time.Time) (*Reading, error) {
	litres, amount, err := ComputeSale(readingValue, previous, pricePerLitre)
	if err != nil {
		return nil, err
	}
	if err := split.Validate(amount); err != nil {
		return nil, err
	}
	return &Reading{
		ID:              NewID("rdg"),
		StationID:       stationID,
		NozzleID:        nozzleID,
		EnteredBy:       enteredBy,
		ReadingDate:     readingDate,
		ReadingValue:    readingValue,
		PreviousReading: previous,
		LitresSold:      litres,
		PricePerLitre:   pricePerLitre,
		TotalAmount:     amount,
		CashAmount:      split.Cash,
		OnlineAmount:    split.Online,
		CreditAmount:    split.Credit,
		CreditorID:      split.CreditorID,
		CreatedAt:       now.UTC(),
	}, nil
}

// NewInitialReading records the opening meter value of a nozzle. Litres sold
// is forced to zero and no payment split applies.
func NewInitialReading(stationID, nozzleID, enteredBy string, readingDate time.Time, readingValue decimal.Decimal, now time.Time) *Reading {
	return &Reading{
		ID:              NewID("rdg"),
		StationID:       stationID,
		NozzleID:        nozzleID,
		EnteredBy:       enteredBy,
		ReadingDate:     readingDate,
		ReadingValue:    readingValue,
		PreviousReading: readingValue,
		LitresSold:      decimal.Zero,
		PricePerLitre:   decimal.Zero,
		TotalAmount:     decimal.Zero,
		CashAmount:      decimal.Zero,
		OnlineAmount:    decimal.Zero,
		CreditAmount:    decimal.Zero,
		IsInitial:       true,
		CreatedAt:       now.UTC(),
	}
}

// Rechain re-points the reading at a new predecessor value and recomputes
// litres sold and the total from its stored price. Used when a backdated
// reading is inserted before this one; the payment split is left as
// recorded and any resulting gap surfaces on the day's settlement.
func (r *Reading) Rechain(newPrevious decimal.Decimal) error {
	litres, amount, err := ComputeSale(r.ReadingValue, newPrevious, r.PricePerLitre)
	if err != nil {
		return err
	}
	r.PreviousReading = newPrevious
	r.LitresSold = litres
	r.TotalAmount = amount
	return nil
}

// Clone returns a detached copy.
func (r *Reading) Clone() *Reading {
	if r == nil {
		return nil
	}
	copy := *r
	return &copy
}
