package application_test

import (
	"context"
	"testing"
	"time"

	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
	"fuelstation-cloud/internal/ledger/infrastructure/memory"
)

func newReceivablesService(t *testing.T, f *fixture) *application.ReceivablesService {
	t.Helper()
	service, err := application.NewReceivablesService(f.store, f.clock)
	if err != nil {
		t.Fatalf("receivables service: %v", err)
	}
	return service
}

func seedTransaction(t *testing.T, store *memory.Store, creditorID string, date time.Time) {
	t.Helper()
	err := store.InTx(context.Background(), func(ctx context.Context, tx application.Tx) error {
		return tx.InsertCreditTransaction(ctx, &ledger.CreditTransaction{
			ID:              ledger.NewID("ctx"),
			StationID:       "st-1",
			CreditorID:      creditorID,
			Type:            ledger.TransactionCredit,
			Amount:          d("100.00"),
			TransactionDate: date,
		})
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}

func seedSettlement(t *testing.T, store *memory.Store, stationID string, day time.Time, variance string, rowStatus string) {
	t.Helper()
	err := store.InTx(context.Background(), func(ctx context.Context, tx application.Tx) error {
		return tx.InsertSettlement(ctx, &ledger.Settlement{
			ID:        ledger.NewID("stl"),
			StationID: stationID,
			Day:       day,
			Variance:  d(variance),
			RowStatus: rowStatus,
		})
	})
	if err != nil {
		t.Fatalf("seed settlement: %v", err)
	}
}

func TestAging_BucketsByDueDate(t *testing.T) {
	f := newFixture(t, defaultLimits())
	service := newReceivablesService(t, f)

	f.store.AddCreditor(ledger.Creditor{
		ID: "crd-a", StationID: "st-1", Name: "Alpha Transport",
		CreditLimit: d("5000.00"), CreditPeriodDays: 10,
		Balance: d("500.00"), Active: true,
		UpdatedAt: dayUTC(2026, time.January, 1),
	})
	f.store.AddCreditor(ledger.Creditor{
		ID: "crd-b", StationID: "st-1", Name: "Beta Haulage",
		CreditLimit: d("5000.00"), CreditPeriodDays: 30,
		Balance: d("200.00"), Active: true,
		UpdatedAt: dayUTC(2026, time.January, 10),
	})
	f.store.AddCreditor(ledger.Creditor{
		ID: "crd-z", StationID: "st-1", Name: "Zero Balance",
		CreditLimit: d("5000.00"), Balance: d("0"), Active: true,
		UpdatedAt: dayUTC(2026, time.January, 1),
	})
	seedTransaction(t, f.store, "crd-a", dayUTC(2026, time.January, 1))
	seedTransaction(t, f.store, "crd-b", dayUTC(2026, time.January, 10))

	report, err := service.Aging(context.Background(), "st-1", time.Time{})
	if err != nil {
		t.Fatalf("aging: %v", err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("zero balances must be skipped: got %d entries", len(report.Entries))
	}

	alpha := report.Entries[0]
	if alpha.CreditorID != "crd-a" {
		t.Fatalf("entries must sort by name: got %s first", alpha.CreditorID)
	}
	if alpha.Bucket != ledger.BucketOverdue || alpha.DaysOverdue != 9 {
		t.Fatalf("alpha aging mismatch: bucket=%s overdue=%d", alpha.Bucket, alpha.DaysOverdue)
	}
	if !alpha.DueDate.Equal(dayUTC(2026, time.January, 11)) {
		t.Fatalf("alpha due date mismatch: %s", alpha.DueDate)
	}

	beta := report.Entries[1]
	if beta.Bucket != ledger.BucketCurrent || beta.DaysOverdue != 0 {
		t.Fatalf("beta aging mismatch: bucket=%s overdue=%d", beta.Bucket, beta.DaysOverdue)
	}
}

func TestAging_AsOfDate(t *testing.T) {
	f := newFixture(t, defaultLimits())
	service := newReceivablesService(t, f)

	f.store.AddCreditor(ledger.Creditor{
		ID: "crd-a", StationID: "st-1", Name: "Alpha Transport",
		CreditLimit: d("5000.00"), CreditPeriodDays: 10,
		Balance: d("500.00"), Active: true,
		UpdatedAt: dayUTC(2026, time.January, 1),
	})
	seedTransaction(t, f.store, "crd-a", dayUTC(2026, time.January, 1))

	// As of Jan 5 the debt is still within its credit period, even though
	// it is overdue today.
	report, err := service.Aging(context.Background(), "st-1", dayUTC(2026, time.January, 5))
	if err != nil {
		t.Fatalf("aging: %v", err)
	}
	if !report.AsOf.Equal(dayUTC(2026, time.January, 5)) {
		t.Fatalf("as-of date mismatch: %s", report.AsOf)
	}
	if len(report.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(report.Entries))
	}
	if entry := report.Entries[0]; entry.Bucket != ledger.BucketCurrent || entry.DaysOverdue != 0 {
		t.Fatalf("past as-of must classify against that day: bucket=%s overdue=%d", entry.Bucket, entry.DaysOverdue)
	}
}

func TestAging_ExcludesOverpaidCreditor(t *testing.T) {
	f := newFixture(t, defaultLimits())
	service := newReceivablesService(t, f)
	f.addCreditor("crd-1", "st-1", d("5000.00"), 15)

	// A payment against a zero balance leaves the creditor in credit.
	if _, err := f.credit.Settle(context.Background(), application.SettleCreditInput{
		CreditorID: "crd-1",
		Amount:     d("500.00"),
		Date:       dayUTC(2026, time.January, 10),
	}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if balance := f.store.Creditor("crd-1").Balance; !balance.Equal(d("-500.00")) {
		t.Fatalf("balance mismatch: got=%s want=-500.00", balance)
	}

	report, err := service.Aging(context.Background(), "st-1", time.Time{})
	if err != nil {
		t.Fatalf("aging: %v", err)
	}
	if len(report.Entries) != 0 {
		t.Fatalf("creditor in credit owes nothing and must not age: %+v", report.Entries)
	}
}

func TestIncome_Statement(t *testing.T) {
	f := newFixture(t, defaultLimits())
	service := newReceivablesService(t, f)

	seedCashReading(t, f.store, "st-1", "nz-1", dayUTC(2026, time.January, 5), d("6000.00"), d("5000.00"), d("1000.00"))
	seedCashReading(t, f.store, "st-1", "nz-2", dayUTC(2026, time.January, 10), d("4000.00"), d("3000.00"), d("1000.00"))
	// Outside the period.
	seedCashReading(t, f.store, "st-1", "nz-1", dayUTC(2026, time.February, 1), d("9000.00"), d("9000.00"), d("0"))
	seedSettlement(t, f.store, "st-1", dayUTC(2026, time.January, 5), "100.00", ledger.SettlementActive)
	// Superseded variance must not count.
	seedSettlement(t, f.store, "st-1", dayUTC(2026, time.January, 5), "999.00", ledger.SettlementSuperseded)

	statement, err := service.Income(context.Background(), "st-1", dayUTC(2026, time.January, 1), dayUTC(2026, time.January, 16))
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	if !statement.GrossSales.Equal(d("10000.00")) {
		t.Fatalf("gross mismatch: got=%s want=10000.00", statement.GrossSales)
	}
	if !statement.CreditExtended.Equal(d("2000.00")) {
		t.Fatalf("credit mismatch: got=%s want=2000.00", statement.CreditExtended)
	}
	if !statement.CashVariance.Equal(d("100.00")) {
		t.Fatalf("variance mismatch: got=%s want=100.00", statement.CashVariance)
	}
	if !statement.NetCashIncome.Equal(d("7900.00")) {
		t.Fatalf("net mismatch: got=%s want=7900.00", statement.NetCashIncome)
	}
}

func TestIncome_OverageStillReducesNet(t *testing.T) {
	f := newFixture(t, defaultLimits())
	service := newReceivablesService(t, f)

	seedCashReading(t, f.store, "st-1", "nz-1", dayUTC(2026, time.January, 5), d("1000.00"), d("1000.00"), d("0"))
	seedSettlement(t, f.store, "st-1", dayUTC(2026, time.January, 5), "-50.00", ledger.SettlementActive)

	statement, err := service.Income(context.Background(), "st-1", dayUTC(2026, time.January, 1), dayUTC(2026, time.January, 16))
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	if !statement.NetCashIncome.Equal(d("950.00")) {
		t.Fatalf("overage must enter as absolute loss: got=%s", statement.NetCashIncome)
	}
}

func TestIncome_EmptyPeriodRejected(t *testing.T) {
	f := newFixture(t, defaultLimits())
	service := newReceivablesService(t, f)

	day := dayUTC(2026, time.January, 10)
	if _, err := service.Income(context.Background(), "st-1", day, day); err == nil {
		t.Fatal("expected error for empty period")
	}
}

func TestDayReport_AggregatesTotals(t *testing.T) {
	f := newFixture(t, defaultLimits())
	service := newReceivablesService(t, f)
	day := dayUTC(2026, time.January, 5)

	seedCashReading(t, f.store, "st-1", "nz-1", day, d("6000.00"), d("5000.00"), d("1000.00"))
	seedCashReading(t, f.store, "st-1", "nz-2", day, d("4000.00"), d("4000.00"), d("0"))
	seedSettlement(t, f.store, "st-1", day, "25.00", ledger.SettlementActive)

	report, err := service.DayReport(context.Background(), "st-1", day)
	if err != nil {
		t.Fatalf("day report: %v", err)
	}
	if len(report.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(report.Lines))
	}
	if !report.GrossSales.Equal(d("10000.00")) || !report.CashTotal.Equal(d("9000.00")) || !report.CreditTotal.Equal(d("1000.00")) {
		t.Fatalf("totals mismatch: gross=%s cash=%s credit=%s", report.GrossSales, report.CashTotal, report.CreditTotal)
	}
	if report.Settlement == nil || !report.Settlement.Variance.Equal(d("25.00")) {
		t.Fatalf("active settlement missing from report: %+v", report.Settlement)
	}
}
