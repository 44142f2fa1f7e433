package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	pricing "fuelstation-cloud/internal/pricing/domain"
)

// PriceRepository persists effective-dated fuel prices.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository constructs a repository.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// ResolveAt returns the price with the largest effective date on or before
// the target date. found is false when no price applies.
func (r *PriceRepository) ResolveAt(ctx context.Context, stationID, fuelType string, date time.Time) (decimal.Decimal, bool, error) {
	if r == nil || r.db == nil {
		return decimal.Zero, false, errors.New("price repo: nil db")
	}
	var price decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
SELECT price_per_litre
FROM fuel_prices
WHERE station_id = $1 AND fuel_type = $2 AND effective_from <= $3
ORDER BY effective_from DESC
LIMIT 1`, stationID, fuelType, date.UTC()).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return price, true, nil
}

// Create inserts a new price row; at most one row may exist per station,
// fuel type and effective date.
func (r *PriceRepository) Create(ctx context.Context, price pricing.FuelPrice) error {
	if r == nil || r.db == nil {
		return errors.New("price repo: nil db")
	}
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM fuel_prices
WHERE station_id = $1 AND fuel_type = $2 AND effective_from = $3`,
		price.StationID, price.FuelType, price.EffectiveFrom.UTC()).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return pricing.ErrDuplicateEffectiveDate
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO fuel_prices (id, station_id, fuel_type, price_per_litre, effective_from, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		price.ID, price.StationID, price.FuelType, price.PricePerLitre, price.EffectiveFrom.UTC(), price.CreatedBy, price.CreatedAt.UTC())
	return err
}

// ListByStation returns a station's price history, newest first.
func (r *PriceRepository) ListByStation(ctx context.Context, stationID string) ([]pricing.FuelPrice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("price repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, station_id, fuel_type, price_per_litre, effective_from, created_by, created_at
FROM fuel_prices
WHERE station_id = $1
ORDER BY effective_from DESC, fuel_type ASC`, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []pricing.FuelPrice
	for rows.Next() {
		var price pricing.FuelPrice
		if err := rows.Scan(
			&price.ID,
			&price.StationID,
			&price.FuelType,
			&price.PricePerLitre,
			&price.EffectiveFrom,
			&price.CreatedBy,
			&price.CreatedAt,
		); err != nil {
			return nil, err
		}
		price.EffectiveFrom = price.EffectiveFrom.UTC()
		price.CreatedAt = price.CreatedAt.UTC()
		result = append(result, price)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
