package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ShiftRepository answers open-shift lookups for reading submission.
type ShiftRepository struct {
	db *sql.DB
}

// NewShiftRepository constructs a repository.
func NewShiftRepository(db *sql.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// HasOpenShift reports whether the user holds an open shift at the station
// covering the given day.
func (r *ShiftRepository) HasOpenShift(ctx context.Context, stationID, userID string, day time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("shift repo: nil db")
	}
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM shifts
WHERE station_id = $1
	AND user_id = $2
	AND shift_date = $3
	AND closed_at IS NULL`, stationID, userID, day.UTC().Truncate(24*time.Hour)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
