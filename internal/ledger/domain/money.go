package ledger

import "github.com/shopspring/decimal"

// PaymentTolerance is the allowed absolute gap between a payment split and
// the sale total. Splits inside the tolerance are accepted as equal.
var PaymentTolerance = decimal.New(1, -2)

// RoundMoney rounds an amount to 2 decimal places, half away from zero.
// All derived amounts (litres x price, settlement sums) go through this, so
// settlement reconciliation sees one rounding mode everywhere.
func RoundMoney(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// RoundLitres rounds a litre quantity to 3 decimal places, half away from zero.
func RoundLitres(value decimal.Decimal) decimal.Decimal {
	return value.Round(3)
}
