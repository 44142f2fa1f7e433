package ledger

import "errors"

var (
	// ErrNozzleNotFound is returned when the nozzle does not exist.
	ErrNozzleNotFound = errors.New("ledger: nozzle not found")
	// ErrNozzleInactive is returned when the nozzle is not in active status.
	ErrNozzleInactive = errors.New("ledger: nozzle inactive")
	// ErrPriceNotSet is returned when no price is effective on the reading date.
	ErrPriceNotSet = errors.New("ledger: price not set")
	// ErrReadingMustIncrease is returned when a reading is below its predecessor.
	ErrReadingMustIncrease = errors.New("ledger: reading must increase")
	// ErrPaymentSplitMismatch is returned when cash+online+credit differs from the total.
	ErrPaymentSplitMismatch = errors.New("ledger: payment split mismatch")
	// ErrNegativeAmount is returned when a payment component is negative.
	ErrNegativeAmount = errors.New("ledger: negative amount")
	// ErrBackdateLimitExceeded is returned when the reading date is older than the plan allows.
	ErrBackdateLimitExceeded = errors.New("ledger: backdate limit exceeded")
	// ErrFutureReading is returned when the reading date is in the future.
	ErrFutureReading = errors.New("ledger: future reading date")
	// ErrShiftRequired is returned when the station requires an open shift and the caller has none.
	ErrShiftRequired = errors.New("ledger: open shift required")
	// ErrCreditorRequired is returned when a credit component has no creditor reference.
	ErrCreditorRequired = errors.New("ledger: creditor required")
	// ErrCreditorNotFound is returned when the creditor does not exist.
	ErrCreditorNotFound = errors.New("ledger: creditor not found")
	// ErrCreditorInactive is returned when the creditor is not active.
	ErrCreditorInactive = errors.New("ledger: creditor inactive")
	// ErrCreditLimitExceeded is returned when an extension would pass the credit limit.
	ErrCreditLimitExceeded = errors.New("ledger: credit limit exceeded")
	// ErrCreditDisabled is returned when the tenant plan has no credit feature.
	ErrCreditDisabled = errors.New("ledger: credit feature disabled")
	// ErrInvalidAmount is returned when a ledger entry amount is not positive.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")
	// ErrInitialNotFirst is returned when an initial reading is submitted to a nozzle with history.
	ErrInitialNotFirst = errors.New("ledger: nozzle already has readings")
	// ErrSettlementNotFound is returned when no settlement exists for the query.
	ErrSettlementNotFound = errors.New("ledger: settlement not found")
	// ErrReadingNotFound is returned when a reading does not exist.
	ErrReadingNotFound = errors.New("ledger: reading not found")
)
