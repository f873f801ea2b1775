// Package thresholds derives buy/sell trigger prices from a bot's reference
// price and volatility band.
package thresholds

// Pair holds the derived trigger prices. Both are nil when no reference
// price is set.
type Pair struct {
	Buy  *float64
	Sell *float64
}

// Compute returns the symmetric trigger band around referencePrice. A
// volatility of 100% or more legally yields a non-positive buy threshold;
// range validation is the form's job, not this function's.
func Compute(referencePrice *float64, volatilityPercent float64) Pair {
	if referencePrice == nil {
		return Pair{}
	}
	band := volatilityPercent / 100
	buy := *referencePrice * (1 - band)
	sell := *referencePrice * (1 + band)
	return Pair{Buy: &buy, Sell: &sell}
}

// ShouldBuy reports whether the current price has crossed at or below the
// buy trigger.
func ShouldBuy(currentPrice *float64, p Pair) bool {
	return currentPrice != nil && p.Buy != nil && *currentPrice <= *p.Buy
}

// ShouldSell reports whether the current price has crossed at or above the
// sell trigger.
func ShouldSell(currentPrice *float64, p Pair) bool {
	return currentPrice != nil && p.Sell != nil && *currentPrice >= *p.Sell
}
