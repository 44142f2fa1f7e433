package application

import (
	"context"
	"errors"
	"time"

	ledger "fuelstation-cloud/internal/ledger/domain"
)

// AgingReport is the receivables position of one station at a point in time.
type AgingReport struct {
	StationID string
	AsOf      time.Time
	Entries   []ledger.AgingEntry
}

// ReceivablesService serves derived read-only reports. It never mutates
// ledger state.
type ReceivablesService struct {
	reports ReportStore
	clock   Clock
}

// NewReceivablesService constructs the service.
func NewReceivablesService(reports ReportStore, clock Clock) (*ReceivablesService, error) {
	if reports == nil {
		return nil, errors.New("receivables service: nil report store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReceivablesService{reports: reports, clock: clock}, nil
}

// Aging buckets every creditor with an outstanding balance by due date as of
// the given day; a zero asOf means today. The due date follows the creditor's
// own credit period from its last activity. Overpaid creditors carry nothing
// receivable and never appear.
func (s *ReceivablesService) Aging(ctx context.Context, stationID string, asOf time.Time) (*AgingReport, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	asOf = DayOf(asOf)
	balances, err := s.reports.OutstandingBalances(ctx, stationID)
	if err != nil {
		return nil, err
	}
	report := &AgingReport{StationID: stationID, AsOf: asOf}
	for _, b := range balances {
		if !b.Creditor.Balance.IsPositive() {
			continue
		}
		dueDate, bucket, overdue := ledger.BucketBalance(asOf, DayOf(b.LastTransactionDate), b.Creditor.CreditPeriodDays)
		report.Entries = append(report.Entries, ledger.AgingEntry{
			CreditorID:          b.Creditor.ID,
			Name:                b.Creditor.Name,
			Balance:             b.Creditor.Balance,
			LastTransactionDate: DayOf(b.LastTransactionDate),
			DueDate:             dueDate,
			Bucket:              bucket,
			DaysOverdue:         overdue,
		})
	}
	return report, nil
}

// Income builds the cash income statement for [from, to).
func (s *ReceivablesService) Income(ctx context.Context, stationID string, from, to time.Time) (*ledger.IncomeStatement, error) {
	from, to = DayOf(from), DayOf(to)
	if !to.After(from) {
		return nil, errors.New("receivables: empty period")
	}
	gross, credit, err := s.reports.SalesTotals(ctx, stationID, from, to)
	if err != nil {
		return nil, err
	}
	variance, err := s.reports.VarianceTotal(ctx, stationID, from, to)
	if err != nil {
		return nil, err
	}
	statement := ledger.BuildIncomeStatement(stationID, from, to, gross, credit, variance)
	return &statement, nil
}

// DayReport summarizes one station day for display and export.
func (s *ReceivablesService) DayReport(ctx context.Context, stationID string, day time.Time) (*DayReport, error) {
	return s.reports.DayReport(ctx, stationID, DayOf(day))
}

// Creditors lists a station's creditors with current balances.
func (s *ReceivablesService) Creditors(ctx context.Context, stationID string) ([]ledger.Creditor, error) {
	return s.reports.Creditors(ctx, stationID)
}

// Creditor loads one creditor. Callers use it to resolve the owning station
// before acting on a creditor id supplied by the client.
func (s *ReceivablesService) Creditor(ctx context.Context, creditorID string) (*ledger.Creditor, error) {
	return s.reports.CreditorByID(ctx, creditorID)
}
