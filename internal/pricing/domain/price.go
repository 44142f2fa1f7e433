package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// FuelPrice is one effective-dated price row for a station and fuel type.
// Prices are never edited in place; a new effective-dated row supersedes.
type FuelPrice struct {
	ID            string
	StationID     string
	FuelType      string
	PricePerLitre decimal.Decimal
	EffectiveFrom time.Time
	CreatedBy     string
	CreatedAt     time.Time
}

// Validate checks the row invariants.
func (p FuelPrice) Validate() error {
	if p.StationID == "" || p.FuelType == "" {
		return ErrInvalidPrice
	}
	if !p.PricePerLitre.IsPositive() {
		return ErrInvalidPrice
	}
	if p.EffectiveFrom.IsZero() {
		return ErrInvalidPrice
	}
	return nil
}
