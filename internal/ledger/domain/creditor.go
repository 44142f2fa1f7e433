package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Creditor is a customer allowed to buy fuel against a running balance.
// The balance is mutated only through credit transactions, never directly.
type Creditor struct {
	ID               string
	StationID        string
	Name             string
	CreditLimit      decimal.Decimal
	CreditPeriodDays int
	Balance          decimal.Decimal
	Active           bool
	UpdatedAt        time.Time
}

// CanExtend checks whether an extension of amount is allowed against the
// current balance and credit limit.
func (c *Creditor) CanExtend(amount decimal.Decimal) error {
	if c == nil {
		return ErrCreditorNotFound
	}
	if !c.Active {
		return ErrCreditorInactive
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if c.Balance.Add(amount).Cmp(c.CreditLimit) > 0 {
		return ErrCreditLimitExceeded
	}
	return nil
}

// Clone returns a detached copy.
func (c *Creditor) Clone() *Creditor {
	if c == nil {
		return nil
	}
	copy := *c
	return &copy
}
