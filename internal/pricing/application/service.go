package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	ledger "fuelstation-cloud/internal/ledger/domain"
	pricing "fuelstation-cloud/internal/pricing/domain"
)

// PriceStore is the persistence needed by the price service.
type PriceStore interface {
	ResolveAt(ctx context.Context, stationID, fuelType string, date time.Time) (decimal.Decimal, bool, error)
	Create(ctx context.Context, price pricing.FuelPrice) error
	ListByStation(ctx context.Context, stationID string) ([]pricing.FuelPrice, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// PriceService resolves and creates effective-dated fuel prices.
type PriceService struct {
	store PriceStore
	clock Clock
}

// NewPriceService constructs the service.
func NewPriceService(store PriceStore, clock Clock) (*PriceService, error) {
	if store == nil {
		return nil, errors.New("price service: nil store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &PriceService{store: store, clock: clock}, nil
}

// Resolve returns the price effective on the date. Read-only; a missing
// price is reported via found=false, never a fabricated default.
func (s *PriceService) Resolve(ctx context.Context, stationID, fuelType string, date time.Time) (decimal.Decimal, bool, error) {
	return s.store.ResolveAt(ctx, stationID, fuelType, date)
}

// History returns a station's price history, newest first.
func (s *PriceService) History(ctx context.Context, stationID string) ([]pricing.FuelPrice, error) {
	return s.store.ListByStation(ctx, stationID)
}

// SetPrice records a new price effective from the given date.
func (s *PriceService) SetPrice(ctx context.Context, stationID, fuelType string, price decimal.Decimal, effectiveFrom time.Time, createdBy string) (*pricing.FuelPrice, error) {
	row := pricing.FuelPrice{
		ID:            ledger.NewID("prc"),
		StationID:     stationID,
		FuelType:      fuelType,
		PricePerLitre: price,
		EffectiveFrom: effectiveFrom.UTC(),
		CreatedBy:     createdBy,
		CreatedAt:     s.clock.Now(),
	}
	if err := row.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, row); err != nil {
		return nil, err
	}
	return &row, nil
}
