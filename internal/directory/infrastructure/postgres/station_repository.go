package postgres

import (
	"context"
	"database/sql"
	"errors"

	directory "fuelstation-cloud/internal/directory/domain"
)

// StationRepository reads stations from the directory tables.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository constructs a repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Get fetches a station, nil when absent.
func (r *StationRepository) Get(ctx context.Context, stationID string) (*directory.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, name, require_open_shift, active, created_at, updated_at
FROM stations
WHERE id = $1
LIMIT 1`, stationID)

	var station directory.Station
	err := row.Scan(
		&station.ID,
		&station.TenantID,
		&station.Name,
		&station.RequireOpenShift,
		&station.Active,
		&station.CreatedAt,
		&station.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	station.CreatedAt = station.CreatedAt.UTC()
	station.UpdatedAt = station.UpdatedAt.UTC()
	return &station, nil
}

// Station implements the ledger application's StationDirectory.
func (r *StationRepository) Station(ctx context.Context, stationID string) (*directory.Station, error) {
	return r.Get(ctx, stationID)
}
