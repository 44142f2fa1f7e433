package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	pricing "fuelstation-cloud/internal/pricing/domain"
)

// PriceRepository is an in-memory price store for tests.
type PriceRepository struct {
	mu     sync.RWMutex
	prices []pricing.FuelPrice
}

// NewPriceRepository constructs a repository.
func NewPriceRepository() *PriceRepository {
	return &PriceRepository{}
}

// ResolveAt returns the price with the largest effective date on or before
// the target date.
func (r *PriceRepository) ResolveAt(ctx context.Context, stationID, fuelType string, date time.Time) (decimal.Decimal, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *pricing.FuelPrice
	for i := range r.prices {
		p := &r.prices[i]
		if p.StationID != stationID || p.FuelType != fuelType {
			continue
		}
		if p.EffectiveFrom.After(date) {
			continue
		}
		if best == nil || p.EffectiveFrom.After(best.EffectiveFrom) {
			best = p
		}
	}
	if best == nil {
		return decimal.Zero, false, nil
	}
	return best.PricePerLitre, true, nil
}

// ListByStation returns a station's price history, newest first.
func (r *PriceRepository) ListByStation(ctx context.Context, stationID string) ([]pricing.FuelPrice, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []pricing.FuelPrice
	for _, p := range r.prices {
		if p.StationID == stationID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EffectiveFrom.After(result[j].EffectiveFrom)
	})
	return result, nil
}

// Create inserts a price row.
func (r *PriceRepository) Create(ctx context.Context, price pricing.FuelPrice) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.prices {
		if existing.StationID == price.StationID &&
			existing.FuelType == price.FuelType &&
			existing.EffectiveFrom.Equal(price.EffectiveFrom) {
			return pricing.ErrDuplicateEffectiveDate
		}
	}
	r.prices = append(r.prices, price)
	return nil
}
