package pricing

import "errors"

var (
	// ErrInvalidPrice is returned when a price row fails validation.
	ErrInvalidPrice = errors.New("pricing: invalid price")
	// ErrDuplicateEffectiveDate is returned when a price already exists for
	// the station, fuel type and effective date.
	ErrDuplicateEffectiveDate = errors.New("pricing: duplicate effective date")
)
