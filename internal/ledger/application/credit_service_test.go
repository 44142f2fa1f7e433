package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
)

func TestCreateCreditor(t *testing.T) {
	f := newFixture(t, defaultLimits())

	creditor, err := f.credit.CreateCreditor(context.Background(), application.CreateCreditorInput{
		StationID:        "st-1",
		Name:             "Hill View Transport",
		CreditLimit:      d("50000.00"),
		CreditPeriodDays: 30,
	})
	if err != nil {
		t.Fatalf("create creditor: %v", err)
	}
	stored := f.store.Creditor(creditor.ID)
	if stored == nil {
		t.Fatal("creditor not persisted")
	}
	if !stored.Balance.IsZero() || !stored.Active {
		t.Fatalf("creditor must open active with zero balance: %+v", stored)
	}
}

func TestCreateCreditor_RejectsNegativeLimit(t *testing.T) {
	f := newFixture(t, defaultLimits())

	_, err := f.credit.CreateCreditor(context.Background(), application.CreateCreditorInput{
		StationID:   "st-1",
		Name:        "Hill View Transport",
		CreditLimit: d("-1.00"),
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestExtendCredit_UpdatesBalance(t *testing.T) {
	f := newFixture(t, defaultLimits())
	f.addCreditor("crd-1", "st-1", d("5000.00"), 30)

	entry, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID:    "crd-1",
		Amount:        d("1200.00"),
		FuelType:      "diesel",
		Litres:        d("12.000"),
		PricePerLitre: d("100.00"),
		Date:          f.clock.now,
	})
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if entry.Type != ledger.TransactionCredit {
		t.Fatalf("entry type mismatch: %s", entry.Type)
	}
	if creditor := f.store.Creditor("crd-1"); !creditor.Balance.Equal(d("1200.00")) {
		t.Fatalf("balance mismatch: got=%s want=1200.00", creditor.Balance)
	}

	if _, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-1",
		Amount:     d("600.00"),
		Date:       f.clock.now,
	}); err != nil {
		t.Fatalf("second extend: %v", err)
	}
	if creditor := f.store.Creditor("crd-1"); !creditor.Balance.Equal(d("1800.00")) {
		t.Fatalf("balance mismatch: got=%s want=1800.00", creditor.Balance)
	}
}

func TestExtendCredit_LimitExceeded(t *testing.T) {
	f := newFixture(t, defaultLimits())
	f.addCreditor("crd-1", "st-1", d("1000.00"), 30)

	if _, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-1", Amount: d("600.00"), Date: f.clock.now,
	}); err != nil {
		t.Fatalf("first extend: %v", err)
	}
	_, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-1", Amount: d("600.00"), Date: f.clock.now,
	})
	if !errors.Is(err, ledger.ErrCreditLimitExceeded) {
		t.Fatalf("expected ErrCreditLimitExceeded, got %v", err)
	}
	if creditor := f.store.Creditor("crd-1"); !creditor.Balance.Equal(d("600.00")) {
		t.Fatalf("balance mutated by failed extend: got=%s", creditor.Balance)
	}
	if len(f.store.Transactions()) != 1 {
		t.Fatalf("expected one entry, got %d", len(f.store.Transactions()))
	}

	// Extending exactly to the limit is allowed.
	if _, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-1", Amount: d("400.00"), Date: f.clock.now,
	}); err != nil {
		t.Fatalf("extend to limit: %v", err)
	}
}

func TestExtendCredit_InactiveCreditor(t *testing.T) {
	f := newFixture(t, defaultLimits())
	f.store.AddCreditor(ledger.Creditor{
		ID:          "crd-1",
		StationID:   "st-1",
		Name:        "Closed Account",
		CreditLimit: d("1000.00"),
	})

	_, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-1", Amount: d("100.00"), Date: f.clock.now,
	})
	if !errors.Is(err, ledger.ErrCreditorInactive) {
		t.Fatalf("expected ErrCreditorInactive, got %v", err)
	}
}

func TestExtendCredit_UnknownCreditor(t *testing.T) {
	f := newFixture(t, defaultLimits())

	_, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-missing", Amount: d("100.00"), Date: f.clock.now,
	})
	if !errors.Is(err, ledger.ErrCreditorNotFound) {
		t.Fatalf("expected ErrCreditorNotFound, got %v", err)
	}
}

func TestSettleCredit_ReducesBalance(t *testing.T) {
	f := newFixture(t, defaultLimits())
	f.addCreditor("crd-1", "st-1", d("5000.00"), 30)

	if _, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-1", Amount: d("1000.00"), Date: f.clock.now,
	}); err != nil {
		t.Fatalf("extend: %v", err)
	}
	entry, err := f.credit.Settle(context.Background(), application.SettleCreditInput{
		CreditorID: "crd-1",
		Amount:     d("400.00"),
		Date:       f.clock.now,
		Reference:  "UPI-1234",
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if entry.Type != ledger.TransactionSettlement || entry.Reference != "UPI-1234" {
		t.Fatalf("entry mismatch: %+v", entry)
	}
	if creditor := f.store.Creditor("crd-1"); !creditor.Balance.Equal(d("600.00")) {
		t.Fatalf("balance mismatch: got=%s want=600.00", creditor.Balance)
	}
}

func TestSettleCredit_OverpaymentGoesNegative(t *testing.T) {
	f := newFixture(t, defaultLimits())
	f.addCreditor("crd-1", "st-1", d("5000.00"), 30)

	if _, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
		CreditorID: "crd-1", Amount: d("300.00"), Date: f.clock.now,
	}); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if _, err := f.credit.Settle(context.Background(), application.SettleCreditInput{
		CreditorID: "crd-1", Amount: d("500.00"), Date: f.clock.now,
	}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if creditor := f.store.Creditor("crd-1"); !creditor.Balance.Equal(d("-200.00")) {
		t.Fatalf("balance mismatch: got=%s want=-200.00", creditor.Balance)
	}
}

func TestSettleCredit_RejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t, defaultLimits())
	f.addCreditor("crd-1", "st-1", d("5000.00"), 30)

	_, err := f.credit.Settle(context.Background(), application.SettleCreditInput{
		CreditorID: "crd-1", Amount: d("0"), Date: f.clock.now,
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestExtendCredit_ConcurrentExtensionsRespectLimit(t *testing.T) {
	f := newFixture(t, defaultLimits())
	f.addCreditor("crd-1", "st-1", d("1000.00"), 30)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.credit.Extend(context.Background(), application.ExtendCreditInput{
				CreditorID: "crd-1", Amount: d("600.00"), Date: f.clock.now,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, limited int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ledger.ErrCreditLimitExceeded):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || limited != 1 {
		t.Fatalf("exactly one extension may win: ok=%d limited=%d", ok, limited)
	}
	if creditor := f.store.Creditor("crd-1"); !creditor.Balance.Equal(d("600.00")) {
		t.Fatalf("balance mismatch after race: got=%s", creditor.Balance)
	}
}
