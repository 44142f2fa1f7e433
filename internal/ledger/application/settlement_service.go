package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	ledger "fuelstation-cloud/internal/ledger/domain"
)

// SettlementRecorded is published after a settlement commits.
type SettlementRecorded struct {
	SettlementID    string
	StationID       string
	Day             time.Time
	ExpectedCash    decimal.Decimal
	ActualCash      decimal.Decimal
	Variance        decimal.Decimal
	VariancePercent decimal.Decimal
	Status          string
	Version         int
	RecordedBy      string
	OccurredAt      time.Time
}

// Publisher receives settlement events after the transaction commits.
type Publisher interface {
	Publish(ctx context.Context, event SettlementRecorded)
}

// RecordSettlementInput is a day-end cash count submission.
type RecordSettlementInput struct {
	StationID  string
	Day        time.Time
	ActualCash decimal.Decimal
	Notes      string
	RecordedBy string
}

// ThresholdResolver returns the variance thresholds for a station.
type ThresholdResolver func(stationID string) ledger.Thresholds

// SettlementService reconciles a station day's expected cash against the
// counted cash. Expected cash is always computed server-side from the day's
// readings; clients only submit the count.
type SettlementService struct {
	store      Store
	thresholds ThresholdResolver
	publisher  Publisher
	clock      Clock
}

// NewSettlementService constructs the service. A nil resolver falls back to
// the default thresholds; a nil publisher disables event delivery.
func NewSettlementService(store Store, thresholds ThresholdResolver, publisher Publisher, clock Clock) (*SettlementService, error) {
	if store == nil {
		return nil, errors.New("settlement service: nil store")
	}
	if thresholds == nil {
		thresholds = func(string) ledger.Thresholds { return ledger.DefaultThresholds() }
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SettlementService{store: store, thresholds: thresholds, publisher: publisher, clock: clock}, nil
}

// Record settles a station day. Re-submitting supersedes the prior active
// row and bumps the version; history is never overwritten.
func (s *SettlementService) Record(ctx context.Context, in RecordSettlementInput) (*ledger.Settlement, error) {
	day := DayOf(in.Day)
	if day.After(DayOf(s.clock.Now())) {
		return nil, ledger.ErrFutureReading
	}

	var out *ledger.Settlement
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		expected, err := tx.SumCashForDay(ctx, in.StationID, day)
		if err != nil {
			return err
		}
		version := 1
		prior, err := tx.ActiveSettlement(ctx, in.StationID, day)
		if err != nil {
			return err
		}
		if prior != nil {
			if err := tx.MarkSettlementSuperseded(ctx, prior.ID); err != nil {
				return err
			}
			version = prior.Version + 1
		}
		settlement, err := ledger.NewSettlement(in.StationID, day, expected, in.ActualCash, in.Notes, in.RecordedBy, s.thresholds(in.StationID), version, s.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.InsertSettlement(ctx, settlement); err != nil {
			return err
		}
		if err := tx.LinkSettlementReadings(ctx, settlement.ID, in.StationID, day); err != nil {
			return err
		}
		out = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, SettlementRecorded{
			SettlementID:    out.ID,
			StationID:       out.StationID,
			Day:             out.Day,
			ExpectedCash:    out.ExpectedCash,
			ActualCash:      out.ActualCash,
			Variance:        out.Variance,
			VariancePercent: out.VariancePercent,
			Status:          out.Status,
			Version:         out.Version,
			RecordedBy:      out.RecordedBy,
			OccurredAt:      s.clock.Now(),
		})
	}
	return out, nil
}
