package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	ledger "fuelstation-cloud/internal/ledger/domain"
)

// ExtendCreditInput describes a balance-raising credit sale.
type ExtendCreditInput struct {
	CreditorID    string
	Amount        decimal.Decimal
	FuelType      string
	Litres        decimal.Decimal
	PricePerLitre decimal.Decimal
	Date          time.Time
	ReadingID     string
}

// SettleCreditInput describes a repayment against a creditor balance.
type SettleCreditInput struct {
	CreditorID string
	Amount     decimal.Decimal
	Date       time.Time
	Reference  string
}

// CreditService maintains creditor balances through append-only ledger
// entries. All balance changes happen under a creditor row lock.
type CreditService struct {
	store  Store
	clock  Clock
	logger *log.Logger
}

// NewCreditService constructs the service.
func NewCreditService(store Store, clock Clock, logger *log.Logger) (*CreditService, error) {
	if store == nil {
		return nil, errors.New("credit service: nil store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CreditService{store: store, clock: clock, logger: logger}, nil
}

// CreateCreditorInput describes a new credit customer.
type CreateCreditorInput struct {
	StationID        string
	Name             string
	CreditLimit      decimal.Decimal
	CreditPeriodDays int
}

// CreateCreditor registers a creditor with a zero opening balance.
func (s *CreditService) CreateCreditor(ctx context.Context, in CreateCreditorInput) (*ledger.Creditor, error) {
	if in.StationID == "" || in.Name == "" {
		return nil, errors.New("credit: station and name required")
	}
	if in.CreditLimit.IsNegative() || in.CreditPeriodDays < 0 {
		return nil, ledger.ErrInvalidAmount
	}
	creditor := &ledger.Creditor{
		ID:               ledger.NewID("crd"),
		StationID:        in.StationID,
		Name:             in.Name,
		CreditLimit:      ledger.RoundMoney(in.CreditLimit),
		CreditPeriodDays: in.CreditPeriodDays,
		Balance:          decimal.Zero,
		Active:           true,
		UpdatedAt:        s.clock.Now(),
	}
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertCreditor(ctx, creditor)
	})
	if err != nil {
		return nil, err
	}
	return creditor, nil
}

// Extend records a standalone credit extension in its own transaction.
func (s *CreditService) Extend(ctx context.Context, in ExtendCreditInput) (*ledger.CreditTransaction, error) {
	var out *ledger.CreditTransaction
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		entry, err := s.extendInTx(ctx, tx, in)
		if err != nil {
			return err
		}
		out = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// extendInTx applies a credit extension inside a caller-owned transaction.
// The reading engine uses this to keep a credit sale and its reading atomic.
func (s *CreditService) extendInTx(ctx context.Context, tx Tx, in ExtendCreditInput) (*ledger.CreditTransaction, error) {
	creditor, err := tx.CreditorForUpdate(ctx, in.CreditorID)
	if err != nil {
		return nil, err
	}
	if creditor == nil {
		return nil, ledger.ErrCreditorNotFound
	}
	if err := creditor.CanExtend(in.Amount); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	entry, err := ledger.NewCreditEntry(creditor.StationID, creditor.ID, in.FuelType, in.Litres, in.PricePerLitre, in.Amount, DayOf(in.Date), in.ReadingID, now)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertCreditTransaction(ctx, entry); err != nil {
		return nil, err
	}
	if err := tx.UpdateCreditorBalance(ctx, creditor.ID, creditor.Balance.Add(entry.Signed()), now); err != nil {
		return nil, err
	}
	return entry, nil
}

// Settle records a repayment. Settling more than the outstanding balance is
// allowed and drives the balance negative (a deposit held in favour of the
// creditor); it is logged for follow-up.
func (s *CreditService) Settle(ctx context.Context, in SettleCreditInput) (*ledger.CreditTransaction, error) {
	var out *ledger.CreditTransaction
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		creditor, err := tx.CreditorForUpdate(ctx, in.CreditorID)
		if err != nil {
			return err
		}
		if creditor == nil {
			return ledger.ErrCreditorNotFound
		}
		if !in.Amount.IsPositive() {
			return ledger.ErrInvalidAmount
		}
		now := s.clock.Now()
		entry, err := ledger.NewSettlementEntry(creditor.StationID, creditor.ID, in.Amount, DayOf(in.Date), in.Reference, now)
		if err != nil {
			return err
		}
		if err := tx.InsertCreditTransaction(ctx, entry); err != nil {
			return err
		}
		balance := creditor.Balance.Add(entry.Signed())
		if balance.IsNegative() {
			s.logger.Printf("credit: creditor %s balance went negative (%s) after settlement %s", creditor.ID, balance, entry.ID)
		}
		if err := tx.UpdateCreditorBalance(ctx, creditor.ID, balance, now); err != nil {
			return err
		}
		out = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
