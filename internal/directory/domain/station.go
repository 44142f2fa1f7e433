package directory

import "time"

// Station is one fuel station owned by a tenant account.
type Station struct {
	ID               string
	TenantID         string
	Name             string
	RequireOpenShift bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
