package directory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nozzle statuses. Only active nozzles accept new readings.
const (
	NozzleActive   = "active"
	NozzleInactive = "inactive"
	NozzleRepair   = "repair"
)

// Nozzle is one dispensing nozzle on a pump. LastReading caches the latest
// meter value for display; the readings table is the source of truth.
type Nozzle struct {
	ID             string
	PumpID         string
	StationID      string
	Number         int
	FuelType       string
	Status         string
	InitialReading decimal.Decimal
	LastReading    decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AcceptsReadings reports whether new readings may be recorded.
func (n *Nozzle) AcceptsReadings() bool {
	return n != nil && n.Status == NozzleActive
}
