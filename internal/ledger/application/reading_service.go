package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	ledger "fuelstation-cloud/internal/ledger/domain"
	"fuelstation-cloud/internal/plan"
)

// SubmitReadingInput is one meter reading submission. StationID is the
// caller's claim and must match the nozzle's station when set.
type SubmitReadingInput struct {
	StationID    string
	NozzleID     string
	ReadingDate  time.Time
	ReadingValue decimal.Decimal
	Split        ledger.PaymentSplit
	IsInitial    bool
	EnteredBy    string
}

// ReadingService records priced meter readings. A submission, its credit
// ledger entry and any rechained follower commit in one transaction.
type ReadingService struct {
	store    Store
	prices   PriceResolver
	stations StationDirectory
	shifts   ShiftChecker
	plans    plan.Provider
	credit   *CreditService
	clock    Clock
}

// NewReadingService constructs the service.
func NewReadingService(store Store, prices PriceResolver, stations StationDirectory, shifts ShiftChecker, plans plan.Provider, credit *CreditService, clock Clock) (*ReadingService, error) {
	if store == nil || prices == nil || stations == nil || plans == nil || credit == nil {
		return nil, errors.New("reading service: missing dependency")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReadingService{
		store:    store,
		prices:   prices,
		stations: stations,
		shifts:   shifts,
		plans:    plans,
		credit:   credit,
		clock:    clock,
	}, nil
}

// Submit records a reading dated at day granularity. Backdated submissions
// are bounded by the tenant plan and rechain the immediate follower.
func (s *ReadingService) Submit(ctx context.Context, in SubmitReadingInput) (*ledger.Reading, error) {
	day := DayOf(in.ReadingDate)
	today := DayOf(s.clock.Now())
	if day.After(today) {
		return nil, ledger.ErrFutureReading
	}

	var out *ledger.Reading
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		nozzle, err := tx.NozzleForUpdate(ctx, in.NozzleID)
		if err != nil {
			return err
		}
		if nozzle == nil {
			return ledger.ErrNozzleNotFound
		}
		if in.StationID != "" && nozzle.StationID != in.StationID {
			return ledger.ErrNozzleNotFound
		}
		if !nozzle.AcceptsReadings() {
			return ledger.ErrNozzleInactive
		}

		station, err := s.stations.Station(ctx, nozzle.StationID)
		if err != nil {
			return err
		}
		limits, err := s.plans.LimitsFor(ctx, station.TenantID)
		if err != nil {
			return err
		}
		if today.Sub(day) > time.Duration(limits.BackdatedDays)*24*time.Hour {
			return ledger.ErrBackdateLimitExceeded
		}
		if station.RequireOpenShift && s.shifts != nil {
			open, err := s.shifts.HasOpenShift(ctx, station.ID, in.EnteredBy, day)
			if err != nil {
				return err
			}
			if !open {
				return ledger.ErrShiftRequired
			}
		}

		if in.IsInitial {
			exists, err := tx.HasReadings(ctx, nozzle.ID)
			if err != nil {
				return err
			}
			if exists {
				return ledger.ErrInitialNotFirst
			}
			reading := ledger.NewInitialReading(station.ID, nozzle.ID, in.EnteredBy, day, in.ReadingValue, s.clock.Now())
			if err := tx.InsertReading(ctx, reading); err != nil {
				return err
			}
			if err := tx.UpdateNozzleLastReading(ctx, nozzle.ID, reading.ReadingValue, s.clock.Now()); err != nil {
				return err
			}
			out = reading
			return nil
		}

		previous := nozzle.InitialReading
		if prior, err := tx.LatestReadingOnOrBefore(ctx, nozzle.ID, day); err != nil {
			return err
		} else if prior != nil {
			previous = prior.ReadingValue
		}

		price, found, err := s.prices.Resolve(ctx, station.ID, nozzle.FuelType, day)
		if err != nil {
			return err
		}
		if !found {
			return ledger.ErrPriceNotSet
		}

		if in.Split.Credit.IsPositive() && !limits.CreditFeatureEnabled {
			return ledger.ErrCreditDisabled
		}

		reading, err := ledger.NewReading(station.ID, nozzle.ID, in.EnteredBy, day, in.ReadingValue, previous, price, in.Split, s.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.InsertReading(ctx, reading); err != nil {
			return err
		}

		if reading.CreditAmount.IsPositive() {
			if _, err := s.credit.extendInTx(ctx, tx, ExtendCreditInput{
				CreditorID:    reading.CreditorID,
				Amount:        reading.CreditAmount,
				FuelType:      nozzle.FuelType,
				Litres:        reading.LitresSold,
				PricePerLitre: reading.PricePerLitre,
				Date:          day,
				ReadingID:     reading.ID,
			}); err != nil {
				return err
			}
		}

		follower, err := tx.FirstReadingAfter(ctx, nozzle.ID, day)
		if err != nil {
			return err
		}
		if follower != nil {
			// Backdated insert: only the immediate follower re-chains.
			// Its litres and total recompute from its own stored price.
			if !follower.PreviousReading.Equal(reading.ReadingValue) {
				if err := follower.Rechain(reading.ReadingValue); err != nil {
					return err
				}
				if err := tx.UpdateReadingChain(ctx, follower); err != nil {
					return err
				}
			}
		} else if err := tx.UpdateNozzleLastReading(ctx, nozzle.ID, reading.ReadingValue, s.clock.Now()); err != nil {
			return err
		}

		out = reading
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
