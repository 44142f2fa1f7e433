package auth

import (
	"context"
	"database/sql"
	"errors"

	directoryrepo "fuelstation-cloud/internal/directory/infrastructure/postgres"
)

var (
	// ErrTenantMismatch indicates resource belongs to a different tenant.
	ErrTenantMismatch = errors.New("tenant mismatch")
	// ErrStationNotAllowed indicates the token's station scope excludes the
	// station.
	ErrStationNotAllowed = errors.New("station not in token scope")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("resource not found")
)

// StationTenantChecker validates station tenant ownership.
type StationTenantChecker interface {
	EnsureStationTenant(ctx context.Context, tenantID, stationID string) error
}

// StationChecker checks station ownership using the station directory.
type StationChecker struct {
	repo *directoryrepo.StationRepository
}

// NewStationChecker constructs a StationChecker.
func NewStationChecker(db *sql.DB) *StationChecker {
	if db == nil {
		return nil
	}
	return &StationChecker{repo: directoryrepo.NewStationRepository(db)}
}

// EnsureStationTenant verifies station belongs to tenant.
func (c *StationChecker) EnsureStationTenant(ctx context.Context, tenantID, stationID string) error {
	if c == nil || c.repo == nil {
		return nil
	}
	if tenantID == "" || stationID == "" {
		return nil
	}
	station, err := c.repo.Get(ctx, stationID)
	if err != nil {
		return err
	}
	if station == nil {
		return ErrNotFound
	}
	if station.TenantID != tenantID {
		return ErrTenantMismatch
	}
	return nil
}
