package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestCreditor_CanExtend_LimitEnforced(t *testing.T) {
	creditor := &Creditor{
		ID:          "cr-1",
		CreditLimit: d("10000"),
		Balance:     d("8000"),
		Active:      true,
	}

	if err := creditor.CanExtend(d("3000")); !errors.Is(err, ErrCreditLimitExceeded) {
		t.Fatalf("expected ErrCreditLimitExceeded, got %v", err)
	}
	if err := creditor.CanExtend(d("2000")); err != nil {
		t.Fatalf("extension up to the limit should pass: %v", err)
	}
}

func TestCreditor_CanExtend_Inactive(t *testing.T) {
	creditor := &Creditor{ID: "cr-1", CreditLimit: d("10000"), Active: false}
	if err := creditor.CanExtend(d("1")); !errors.Is(err, ErrCreditorInactive) {
		t.Fatalf("expected ErrCreditorInactive, got %v", err)
	}
}

func TestCreditor_CanExtend_NonPositiveAmount(t *testing.T) {
	creditor := &Creditor{ID: "cr-1", CreditLimit: d("10000"), Active: true}
	if err := creditor.CanExtend(d("0")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := creditor.CanExtend(d("-5")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreditTransaction_SignConvention(t *testing.T) {
	now := time.Date(2025, time.December, 10, 12, 0, 0, 0, time.UTC)
	credit, err := NewCreditEntry("st-1", "cr-1", "diesel", d("20"), d("100"), d("2000"), now, "rdg-1", now)
	if err != nil {
		t.Fatalf("new credit entry: %v", err)
	}
	if !credit.Signed().Equal(d("2000.00")) {
		t.Fatalf("credit sign mismatch: %s", credit.Signed())
	}

	settle, err := NewSettlementEntry("st-1", "cr-1", d("500"), now, "receipt-9", now)
	if err != nil {
		t.Fatalf("new settlement entry: %v", err)
	}
	if !settle.Signed().Equal(d("-500.00")) {
		t.Fatalf("settlement sign mismatch: %s", settle.Signed())
	}
}

func TestCreditTransaction_RejectsNonPositive(t *testing.T) {
	now := time.Now().UTC()
	if _, err := NewCreditEntry("st-1", "cr-1", "diesel", d("0"), d("100"), d("0"), now, "", now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := NewSettlementEntry("st-1", "cr-1", d("-10"), now, "", now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
