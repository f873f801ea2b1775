package backend

import (
	"github.com/knocoin/console/pkg/models"
)

// BotUpdate is a partial configuration update. Nil fields are left unchanged
// server-side, so the same struct doubles as the optimistic local merge the
// store applies after a successful save. Server-authoritative fields
// (balance, profit, timestamps) and the write-only private key have no place
// here; the key travels only through the dedicated wallet endpoint.
type BotUpdate struct {
	Name                 *string  `json:"name,omitempty"`
	TokenPair            *string  `json:"token_pair,omitempty"`
	VolatilityPercent    *float64 `json:"volatility_percent,omitempty"`
	ReferencePrice       *float64 `json:"reference_price,omitempty"`
	BuyAmount            *float64 `json:"buy_amount,omitempty"`
	SellAmount           *float64 `json:"sell_amount,omitempty"`
	MinSwapAmount        *float64 `json:"min_swap_amount,omitempty"`
	RandomTradesCount    *int     `json:"random_trades_count,omitempty"`
	TradingDurationHours *int     `json:"trading_duration_hours,omitempty"`
	WalletAddress        *string  `json:"wallet_address,omitempty"`
	RPCEndpoint          *string  `json:"rpc_endpoint,omitempty"`
	WPOLAddress          *string  `json:"wpol_address,omitempty"`
	KNOAddress           *string  `json:"kno_address,omitempty"`
	RouterAddress        *string  `json:"router_address,omitempty"`
	QuoterAddress        *string  `json:"quoter_address,omitempty"`
	SlippageTolerance    *float64 `json:"slippage_tolerance,omitempty"`
	GasLimit             *int64   `json:"gas_limit,omitempty"`
	GasPrice             *int64   `json:"gas_price,omitempty"`
	BuyPriceThreshold    *float64 `json:"buy_price_threshold,omitempty"`
	BuyPercentageDrop    *float64 `json:"buy_percentage_drop,omitempty"`
	SellPriceThreshold   *float64 `json:"sell_price_threshold,omitempty"`
	SellPercentageGain   *float64 `json:"sell_percentage_gain,omitempty"`
}

// Apply merges the set fields into b. Applying the same update twice yields
// the same result as applying it once.
func (u BotUpdate) Apply(b *models.BotConfig) {
	if u.Name != nil {
		b.Name = *u.Name
	}
	if u.TokenPair != nil {
		b.TokenPair = *u.TokenPair
	}
	if u.VolatilityPercent != nil {
		b.VolatilityPercent = *u.VolatilityPercent
	}
	if u.ReferencePrice != nil {
		price := *u.ReferencePrice
		b.ReferencePrice = &price
	}
	if u.BuyAmount != nil {
		b.BuyAmount = *u.BuyAmount
	}
	if u.SellAmount != nil {
		b.SellAmount = *u.SellAmount
	}
	if u.MinSwapAmount != nil {
		b.MinSwapAmount = *u.MinSwapAmount
	}
	if u.RandomTradesCount != nil {
		b.RandomTradesCount = *u.RandomTradesCount
	}
	if u.TradingDurationHours != nil {
		b.TradingDurationHours = *u.TradingDurationHours
	}
	if u.WalletAddress != nil {
		b.WalletAddress = *u.WalletAddress
	}
	if u.RPCEndpoint != nil {
		b.RPCEndpoint = *u.RPCEndpoint
	}
	if u.WPOLAddress != nil {
		b.WPOLAddress = *u.WPOLAddress
	}
	if u.KNOAddress != nil {
		b.KNOAddress = *u.KNOAddress
	}
	if u.RouterAddress != nil {
		b.RouterAddress = *u.RouterAddress
	}
	if u.QuoterAddress != nil {
		b.QuoterAddress = *u.QuoterAddress
	}
	if u.SlippageTolerance != nil {
		b.SlippageTolerance = *u.SlippageTolerance
	}
	if u.GasLimit != nil {
		b.GasLimit = *u.GasLimit
	}
	if u.GasPrice != nil {
		b.GasPrice = *u.GasPrice
	}
	if u.BuyPriceThreshold != nil {
		b.BuyPriceThreshold = *u.BuyPriceThreshold
	}
	if u.BuyPercentageDrop != nil {
		b.BuyPercentageDrop = *u.BuyPercentageDrop
	}
	if u.SellPriceThreshold != nil {
		b.SellPriceThreshold = *u.SellPriceThreshold
	}
	if u.SellPercentageGain != nil {
		b.SellPercentageGain = *u.SellPercentageGain
	}
}

// Validate runs the same client-side checks a full configuration gets,
// against the result of applying the update to current.
func (u BotUpdate) Validate(current models.BotConfig) error {
	u.Apply(&current)
	return current.ValidateConfig()
}
