package postgres

import (
	"context"
	"database/sql"
	"errors"

	directory "fuelstation-cloud/internal/directory/domain"
)

// NozzleRepository reads nozzles from the directory tables.
type NozzleRepository struct {
	db *sql.DB
}

// NewNozzleRepository constructs a repository.
func NewNozzleRepository(db *sql.DB) *NozzleRepository {
	return &NozzleRepository{db: db}
}

// Get fetches a nozzle, nil when absent.
func (r *NozzleRepository) Get(ctx context.Context, nozzleID string) (*directory.Nozzle, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("nozzle repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, pump_id, station_id, nozzle_number, fuel_type, status, initial_reading, last_reading, created_at, updated_at
FROM nozzles
WHERE id = $1
LIMIT 1`, nozzleID)
	return scanNozzle(row)
}

// ListByStation lists a station's nozzles ordered by pump and number.
func (r *NozzleRepository) ListByStation(ctx context.Context, stationID string) ([]directory.Nozzle, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("nozzle repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, pump_id, station_id, nozzle_number, fuel_type, status, initial_reading, last_reading, created_at, updated_at
FROM nozzles
WHERE station_id = $1
ORDER BY pump_id ASC, nozzle_number ASC`, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.Nozzle
	for rows.Next() {
		nozzle, err := scanNozzle(rows)
		if err != nil {
			return nil, err
		}
		if nozzle != nil {
			result = append(result, *nozzle)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNozzle(row rowScanner) (*directory.Nozzle, error) {
	var nozzle directory.Nozzle
	err := row.Scan(
		&nozzle.ID,
		&nozzle.PumpID,
		&nozzle.StationID,
		&nozzle.Number,
		&nozzle.FuelType,
		&nozzle.Status,
		&nozzle.InitialReading,
		&nozzle.LastReading,
		&nozzle.CreatedAt,
		&nozzle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	nozzle.CreatedAt = nozzle.CreatedAt.UTC()
	nozzle.UpdatedAt = nozzle.UpdatedAt.UTC()
	return &nozzle, nil
}
