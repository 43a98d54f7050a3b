package util

import (
	"github.com/shopspring/decimal"
)

var beddowsPerLSK = decimal.NewFromInt(BEDDOWS_PER_LSK)

// ToBeddows converts a whole-coin amount into beddows, truncating anything
// past the 8th decimal place.
func ToBeddows(lsk decimal.Decimal) int64 {
	return lsk.Mul(beddowsPerLSK).IntPart()
}

// FormatLSK renders a beddows amount as a fixed 8 decimal LSK string
func FormatLSK(beddows int64) string {
	return decimal.New(beddows, -8).StringFixed(8)
}
