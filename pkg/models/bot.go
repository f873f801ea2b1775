package models

import (
	"time"
)

// BotStatus is the lifecycle state reported for a trading bot.
type BotStatus string

const (
	StatusActive  BotStatus = "active"
	StatusPaused  BotStatus = "paused"
	StatusError   BotStatus = "error"
	StatusOffline BotStatus = "offline"
)

// BotConfig is one trading agent as tracked by the console. The backend is
// the system of record; local copies are a cache between reloads.
type BotConfig struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TokenPair string    `json:"token_pair"`
	IsActive  bool      `json:"is_active"`
	Status    BotStatus `json:"status"`

	// Trigger band around the reference price.
	VolatilityPercent float64  `json:"volatility_percent"`
	ReferencePrice    *float64 `json:"reference_price,omitempty"`

	// Swap sizing.
	BuyAmount     float64 `json:"buy_amount"`
	SellAmount    float64 `json:"sell_amount"`
	MinSwapAmount float64 `json:"min_swap_amount"`

	LastBuyPrice  *float64 `json:"last_buy_price,omitempty"`
	LastSellPrice *float64 `json:"last_sell_price,omitempty"`

	// Parameters for the backend's randomized trading schedule.
	RandomTradesCount    int `json:"random_trades_count"`
	TradingDurationHours int `json:"trading_duration_hours"`

	// Wallet and chain configuration. The private key is write-only from the
	// console's perspective: it is sent on save and never redisplayed.
	WalletAddress    string `json:"wallet_address,omitempty"`
	WalletPrivateKey string `json:"-"`
	RPCEndpoint      string `json:"rpc_endpoint,omitempty"`
	WPOLAddress      string `json:"wpol_address,omitempty"`
	KNOAddress       string `json:"kno_address,omitempty"`
	RouterAddress    string `json:"router_address,omitempty"`
	QuoterAddress    string `json:"quoter_address,omitempty"`

	SlippageTolerance float64 `json:"slippage_tolerance"`
	GasLimit          int64   `json:"gas_limit"`
	GasPrice          int64   `json:"gas_price"`

	// Server-authoritative stats.
	Balance     float64 `json:"balance"`
	TotalProfit float64 `json:"total_profit"`

	// Legacy fixed-threshold fields. Round-tripped for backend compatibility,
	// never interpreted by the console.
	BuyPriceThreshold  float64 `json:"buy_price_threshold"`
	BuyPercentageDrop  float64 `json:"buy_percentage_drop"`
	SellPriceThreshold float64 `json:"sell_price_threshold"`
	SellPercentageGain float64 `json:"sell_percentage_gain"`

	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
}

// SetRunning flips the activity flag and status together so the two can
// never disagree.
func (b *BotConfig) SetRunning(running bool) {
	b.IsActive = running
	if running {
		b.Status = StatusActive
	} else if b.Status == StatusActive || b.Status == "" {
		b.Status = StatusPaused
	}
}

// Normalize reconciles a status/is_active pair that diverged upstream.
// The activity flag wins.
func (b *BotConfig) Normalize() {
	if b.Status == "" {
		b.Status = StatusPaused
	}
	b.SetRunning(b.IsActive)
}

// Running reports whether the pair is in the active state.
func (b *BotConfig) Running() bool {
	return b.IsActive && b.Status == StatusActive
}

// DefaultBotID identifies the placeholder bot returned when the collection
// is empty, so callers never dereference a missing selection.
const DefaultBotID = "default"

// DefaultBot returns a neutral placeholder configuration.
func DefaultBot() BotConfig {
	return BotConfig{
		ID:        DefaultBotID,
		Name:      "Default Bot",
		TokenPair: "KNO/WPOL",
		IsActive:  false,
		Status:    StatusPaused,
	}
}
