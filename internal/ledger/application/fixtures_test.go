package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	directory "fuelstation-cloud/internal/directory/domain"
	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
	"fuelstation-cloud/internal/ledger/infrastructure/memory"
	"fuelstation-cloud/internal/plan"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func dayUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// priceBook resolves a flat price per station and fuel type, ignoring the
// date. Effective-dated resolution has its own tests in the pricing package.
type priceBook struct {
	prices map[string]decimal.Decimal
}

func newPriceBook() *priceBook {
	return &priceBook{prices: make(map[string]decimal.Decimal)}
}

func (p *priceBook) Set(stationID, fuelType string, price decimal.Decimal) {
	p.prices[stationID+"|"+fuelType] = price
}

func (p *priceBook) Resolve(ctx context.Context, stationID, fuelType string, date time.Time) (decimal.Decimal, bool, error) {
	_ = ctx
	_ = date
	price, ok := p.prices[stationID+"|"+fuelType]
	return price, ok, nil
}

type capturePublisher struct {
	events []application.SettlementRecorded
}

func (p *capturePublisher) Publish(ctx context.Context, event application.SettlementRecorded) {
	_ = ctx
	p.events = append(p.events, event)
}

type fixture struct {
	store    *memory.Store
	dir      *memory.Directory
	shifts   *memory.ShiftBook
	prices   *priceBook
	clock    fixedClock
	credit   *application.CreditService
	readings *application.ReadingService
}

func newFixture(t *testing.T, limits plan.Limits) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		dir:    memory.NewDirectory(),
		shifts: memory.NewShiftBook(),
		prices: newPriceBook(),
		clock:  fixedClock{now: time.Date(2026, time.January, 20, 10, 0, 0, 0, time.UTC)},
	}
	credit, err := application.NewCreditService(f.store, f.clock, nil)
	if err != nil {
		t.Fatalf("credit service: %v", err)
	}
	readings, err := application.NewReadingService(f.store, f.prices, f.dir, f.shifts, plan.Static{Limits: limits}, credit, f.clock)
	if err != nil {
		t.Fatalf("reading service: %v", err)
	}
	f.credit = credit
	f.readings = readings
	return f
}

func defaultLimits() plan.Limits {
	return plan.Limits{BackdatedDays: 7, CreditFeatureEnabled: true}
}

func (f *fixture) addStation(id, tenantID string, requireShift bool) {
	f.dir.AddStation(directory.Station{
		ID:               id,
		TenantID:         tenantID,
		Name:             "Station " + id,
		RequireOpenShift: requireShift,
		Active:           true,
	})
}

func (f *fixture) addNozzle(id, stationID, fuelType string, initial decimal.Decimal) {
	f.store.AddNozzle(directory.Nozzle{
		ID:             id,
		StationID:      stationID,
		FuelType:       fuelType,
		Status:         directory.NozzleActive,
		InitialReading: initial,
		LastReading:    initial,
	})
}

func directoryNozzle(id, stationID, status string) directory.Nozzle {
	return directory.Nozzle{
		ID:        id,
		StationID: stationID,
		FuelType:  "petrol",
		Status:    status,
	}
}

func (f *fixture) addCreditor(id, stationID string, limit decimal.Decimal, periodDays int) {
	f.store.AddCreditor(ledger.Creditor{
		ID:               id,
		StationID:        stationID,
		Name:             "Creditor " + id,
		CreditLimit:      limit,
		CreditPeriodDays: periodDays,
		Balance:          decimal.Zero,
		Active:           true,
		UpdatedAt:        f.clock.now,
	})
}

// seedCashReading inserts a priced reading directly, bypassing the reading
// service, for settlement and report tests that only care about totals.
func seedCashReading(t *testing.T, store *memory.Store, stationID, nozzleID string, day time.Time, total, cash, credit decimal.Decimal) *ledger.Reading {
	t.Helper()
	reading := &ledger.Reading{
		ID:           ledger.NewID("rdg"),
		StationID:    stationID,
		NozzleID:     nozzleID,
		ReadingDate:  day,
		TotalAmount:  total,
		CashAmount:   cash,
		OnlineAmount: total.Sub(cash).Sub(credit),
		CreditAmount: credit,
		CreatedAt:    day,
	}
	err := store.InTx(context.Background(), func(ctx context.Context, tx application.Tx) error {
		return tx.InsertReading(ctx, reading)
	})
	if err != nil {
		t.Fatalf("seed reading: %v", err)
	}
	return reading
}
