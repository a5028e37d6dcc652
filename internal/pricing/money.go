package pricing

import "github.com/shopspring/decimal"

// Money represents a monetary amount as an exact decimal.
type Money = decimal.Decimal

// Grams represents a weight in grams.
type Grams = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// NewMoney builds a Money value from a whole amount.
func NewMoney(v int64) Money {
	return decimal.NewFromInt(v)
}

// NewGrams builds a weight from a whole number of grams.
func NewGrams(v int64) Grams {
	return decimal.NewFromInt(v)
}

func clampZero(v Money) Money {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
