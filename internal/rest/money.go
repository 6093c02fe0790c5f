package rest

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidNumber  = errors.New("number must be finite")
	ErrNumberTooLarge = errors.New("number exceeds 999999999999.99")
)

// MaxAmount is the largest value a NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ToDecimal converts a JSON number to a two-place currency amount.
func ToDecimal(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, ErrInvalidNumber
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, ErrNumberTooLarge
	}
	return d, nil
}

func ToFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
