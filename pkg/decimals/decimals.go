// Package decimals converts between token smallest units and human-readable
// decimal amounts.
package decimals

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToDecimal converts a smallest-unit value to its decimal representation.
// A nil value converts to zero.
func ToDecimal(value *big.Int, decimalsCount int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimalsCount)
}

// ToBigInt converts a decimal amount to the token's smallest unit,
// truncating any precision beyond decimalsCount.
func ToBigInt(amount decimal.Decimal, decimalsCount int32) *big.Int {
	return amount.Shift(decimalsCount).Truncate(0).BigInt()
}
