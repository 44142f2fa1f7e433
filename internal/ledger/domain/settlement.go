package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variance classification statuses.
const (
	VarianceOK          = "OK"
	VarianceReview      = "REVIEW"
	VarianceInvestigate = "INVESTIGATE"
)

// Settlement row statuses. Re-submitting a day supersedes the prior row.
const (
	SettlementActive     = "active"
	SettlementSuperseded = "superseded"
)

// Thresholds classify the absolute variance percent. Percentages strictly
// below OKBelowPct are OK, below ReviewBelowPct are REVIEW, anything above
// is INVESTIGATE.
type Thresholds struct {
	OKBelowPct     float64
	ReviewBelowPct float64
}

// DefaultThresholds returns the 1% / 3% defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{OKBelowPct: 1, ReviewBelowPct: 3}
}

// Settlement reconciles a day's expected cash against the counted cash.
type Settlement struct {
	ID              string
	StationID       string
	Day             time.Time
	ExpectedCash    decimal.Decimal
	ActualCash      decimal.Decimal
	Variance        decimal.Decimal
	VariancePercent decimal.Decimal
	Status          string
	RowStatus       string
	Version         int
	Notes           string
	RecordedBy      string
	CreatedAt       time.Time
}

// ClassifyVariance computes the signed variance (expected - actual, so a
// shortfall is positive), its percent of expected cash, and the status.
// A zero expected cash yields 0% and is OK only when actual is also zero.
func ClassifyVariance(expected, actual decimal.Decimal, th Thresholds) (variance, percent decimal.Decimal, status string) {
	variance = RoundMoney(expected.Sub(actual))
	if expected.IsZero() {
		if actual.IsZero() {
			return variance, decimal.Zero, VarianceOK
		}
		return variance, decimal.Zero, VarianceInvestigate
	}
	percent = variance.Div(expected).Mul(decimal.NewFromInt(100)).Round(2)
	abs := percent.Abs()
	switch {
	case abs.Cmp(decimal.NewFromFloat(th.OKBelowPct)) < 0:
		status = VarianceOK
	case abs.Cmp(decimal.NewFromFloat(th.ReviewBelowPct)) < 0:
		status = VarianceReview
	default:
		status = VarianceInvestigate
	}
	return variance, percent, status
}

// NewSettlement builds a settlement for a station day. Expected cash is
// always server-computed by the caller; actual cash comes from the count.
func NewSettlement(stationID string, day time.Time, expected, actual decimal.Decimal, notes, recordedBy string, th Thresholds, version int, now time.Time) (*Settlement, error) {
	if actual.IsNegative() {
		return nil, ErrNegativeAmount
	}
	variance, percent, status := ClassifyVariance(expected, actual, th)
	return &Settlement{
		ID:              NewID("stl"),
		StationID:       stationID,
		Day:             day,
		ExpectedCash:    RoundMoney(expected),
		ActualCash:      RoundMoney(actual),
		Variance:        variance,
		VariancePercent: percent,
		Status:          status,
		RowStatus:       SettlementActive,
		Version:         version,
		Notes:           notes,
		RecordedBy:      recordedBy,
		CreatedAt:       now.UTC(),
	}, nil
}

// Clone returns a detached copy.
func (s *Settlement) Clone() *Settlement {
	if s == nil {
		return nil
	}
	copy := *s
	return &copy
}
