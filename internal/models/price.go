package models

import "github.com/shopspring/decimal"

// Prices are stored as NUMERIC(10,2)
const PriceDecimals = 2

// InvalidPriceMessage is shown to clients whose price fails ValidPrice
const InvalidPriceMessage = "Prices must be positive, below 100000000 and have at most 2 decimal places"

// MaxPrice is the first amount that no longer fits the price columns
var MaxPrice = decimal.New(1, 8)

// ValidPrice reports whether d is a positive amount with at most two decimal
// places that fits the price columns without rounding or overflow.
func ValidPrice(d decimal.Decimal) bool {
	return d.IsPositive() &&
		d.Equal(d.Truncate(PriceDecimals)) &&
		d.LessThan(MaxPrice)
}
