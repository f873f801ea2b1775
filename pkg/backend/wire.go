package backend

import (
	"strconv"
	"time"

	"github.com/knocoin/console/pkg/models"
)

// The backend speaks a fixed lower-snake-case vocabulary. Translation between
// it and the console's models lives entirely in this file; the table below is
// checked for exhaustiveness by wire_test.go so a renamed or added field can
// never silently stop persisting.

// botFieldNames maps models.BotConfig field names to their wire names.
var botFieldNames = map[string]string{
	"ID":                   "id",
	"Name":                 "name",
	"TokenPair":            "token_pair",
	"IsActive":             "is_active",
	"Status":               "status",
	"VolatilityPercent":    "volatility_percent",
	"ReferencePrice":       "reference_price",
	"BuyAmount":            "buy_amount",
	"SellAmount":           "sell_amount",
	"MinSwapAmount":        "min_swap_amount",
	"LastBuyPrice":         "last_buy_price",
	"LastSellPrice":        "last_sell_price",
	"RandomTradesCount":    "random_trades_count",
	"TradingDurationHours": "trading_duration_hours",
	"WalletAddress":        "wallet_address",
	"WalletPrivateKey":     "wallet_private_key",
	"RPCEndpoint":          "rpc_endpoint",
	"WPOLAddress":          "wpol_address",
	"KNOAddress":           "kno_address",
	"RouterAddress":        "router_address",
	"QuoterAddress":        "quoter_address",
	"SlippageTolerance":    "slippage_tolerance",
	"GasLimit":             "gas_limit",
	"GasPrice":             "gas_price",
	"Balance":              "balance",
	"TotalProfit":          "total_profit",
	"BuyPriceThreshold":    "buy_price_threshold",
	"BuyPercentageDrop":    "buy_percentage_drop",
	"SellPriceThreshold":   "sell_price_threshold",
	"SellPercentageGain":   "sell_percentage_gain",
	"CreatedAt":            "created_at",
	"UpdatedAt":            "updated_at",
	"LastHeartbeat":        "last_heartbeat",
}

type botPayload struct {
	ID                   int64    `json:"id,omitempty"`
	Name                 string   `json:"name"`
	TokenPair            string   `json:"token_pair"`
	IsActive             bool     `json:"is_active"`
	Status               string   `json:"status,omitempty"`
	VolatilityPercent    float64  `json:"volatility_percent"`
	ReferencePrice       *float64 `json:"reference_price,omitempty"`
	BuyAmount            float64  `json:"buy_amount"`
	SellAmount           float64  `json:"sell_amount"`
	MinSwapAmount        float64  `json:"min_swap_amount"`
	LastBuyPrice         *float64 `json:"last_buy_price,omitempty"`
	LastSellPrice        *float64 `json:"last_sell_price,omitempty"`
	RandomTradesCount    int      `json:"random_trades_count"`
	TradingDurationHours int      `json:"trading_duration_hours"`
	WalletAddress        string   `json:"wallet_address,omitempty"`
	WalletPrivateKey     string   `json:"wallet_private_key,omitempty"`
	RPCEndpoint          string   `json:"rpc_endpoint,omitempty"`
	WPOLAddress          string   `json:"wpol_address,omitempty"`
	KNOAddress           string   `json:"kno_address,omitempty"`
	RouterAddress        string   `json:"router_address,omitempty"`
	QuoterAddress        string   `json:"quoter_address,omitempty"`
	SlippageTolerance    float64  `json:"slippage_tolerance"`
	GasLimit             int64    `json:"gas_limit"`
	GasPrice             int64    `json:"gas_price"`
	Balance              float64  `json:"balance"`
	TotalProfit          float64  `json:"total_profit"`
	BuyPriceThreshold    float64  `json:"buy_price_threshold"`
	BuyPercentageDrop    float64  `json:"buy_percentage_drop"`
	SellPriceThreshold   float64  `json:"sell_price_threshold"`
	SellPercentageGain   float64  `json:"sell_percentage_gain"`
	CreatedAt            string   `json:"created_at,omitempty"`
	UpdatedAt            string   `json:"updated_at,omitempty"`
	LastHeartbeat        string   `json:"last_heartbeat,omitempty"`
}

type transactionPayload struct {
	ID        int64    `json:"id"`
	BotID     *int64   `json:"bot_id,omitempty"`
	Type      string   `json:"type"`
	Amount    float64  `json:"amount"`
	Price     float64  `json:"price"`
	Timestamp string   `json:"timestamp"`
	Profit    *float64 `json:"profit,omitempty"`
	TxHash    string   `json:"tx_hash,omitempty"`
}

// walletPayload is the body of the dedicated wallet endpoint. The private
// key only ever travels through this payload or a creation payload.
type walletPayload struct {
	WalletAddress    string `json:"wallet_address"`
	WalletPrivateKey string `json:"wallet_private_key"`
	RPCEndpoint      string `json:"rpc_endpoint,omitempty"`
	WPOLAddress      string `json:"wpol_address,omitempty"`
	KNOAddress       string `json:"kno_address,omitempty"`
	RouterAddress    string `json:"router_address,omitempty"`
}

// timeLayouts covers the timestamp shapes the backend is known to emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseWireTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatWireTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func wireID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func modelID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func botToWire(b models.BotConfig) botPayload {
	return botPayload{
		ID:                   wireID(b.ID),
		Name:                 b.Name,
		TokenPair:            b.TokenPair,
		IsActive:             b.IsActive,
		Status:               string(b.Status),
		VolatilityPercent:    b.VolatilityPercent,
		ReferencePrice:       b.ReferencePrice,
		BuyAmount:            b.BuyAmount,
		SellAmount:           b.SellAmount,
		MinSwapAmount:        b.MinSwapAmount,
		LastBuyPrice:         b.LastBuyPrice,
		LastSellPrice:        b.LastSellPrice,
		RandomTradesCount:    b.RandomTradesCount,
		TradingDurationHours: b.TradingDurationHours,
		WalletAddress:        b.WalletAddress,
		WalletPrivateKey:     b.WalletPrivateKey,
		RPCEndpoint:          b.RPCEndpoint,
		WPOLAddress:          b.WPOLAddress,
		KNOAddress:           b.KNOAddress,
		RouterAddress:        b.RouterAddress,
		QuoterAddress:        b.QuoterAddress,
		SlippageTolerance:    b.SlippageTolerance,
		GasLimit:             b.GasLimit,
		GasPrice:             b.GasPrice,
		Balance:              b.Balance,
		TotalProfit:          b.TotalProfit,
		BuyPriceThreshold:    b.BuyPriceThreshold,
		BuyPercentageDrop:    b.BuyPercentageDrop,
		SellPriceThreshold:   b.SellPriceThreshold,
		SellPercentageGain:   b.SellPercentageGain,
		CreatedAt:            formatWireTime(b.CreatedAt),
		UpdatedAt:            formatWireTime(b.UpdatedAt),
		LastHeartbeat:        formatWireTime(b.LastHeartbeat),
	}
}

func botFromWire(p botPayload) models.BotConfig {
	b := models.BotConfig{
		ID:                   modelID(p.ID),
		Name:                 p.Name,
		TokenPair:            p.TokenPair,
		IsActive:             p.IsActive,
		Status:               models.BotStatus(p.Status),
		VolatilityPercent:    p.VolatilityPercent,
		ReferencePrice:       p.ReferencePrice,
		BuyAmount:            p.BuyAmount,
		SellAmount:           p.SellAmount,
		MinSwapAmount:        p.MinSwapAmount,
		LastBuyPrice:         p.LastBuyPrice,
		LastSellPrice:        p.LastSellPrice,
		RandomTradesCount:    p.RandomTradesCount,
		TradingDurationHours: p.TradingDurationHours,
		WalletAddress:        p.WalletAddress,
		RPCEndpoint:          p.RPCEndpoint,
		WPOLAddress:          p.WPOLAddress,
		KNOAddress:           p.KNOAddress,
		RouterAddress:        p.RouterAddress,
		QuoterAddress:        p.QuoterAddress,
		SlippageTolerance:    p.SlippageTolerance,
		GasLimit:             p.GasLimit,
		GasPrice:             p.GasPrice,
		Balance:              p.Balance,
		TotalProfit:          p.TotalProfit,
		BuyPriceThreshold:    p.BuyPriceThreshold,
		BuyPercentageDrop:    p.BuyPercentageDrop,
		SellPriceThreshold:   p.SellPriceThreshold,
		SellPercentageGain:   p.SellPercentageGain,
		CreatedAt:            parseWireTime(p.CreatedAt),
		UpdatedAt:            parseWireTime(p.UpdatedAt),
		LastHeartbeat:        parseWireTime(p.LastHeartbeat),
	}
	// Never carry a key back from the wire, even if the backend echoes one.
	b.WalletPrivateKey = ""
	b.Normalize()
	return b
}

func transactionFromWire(p transactionPayload) models.Transaction {
	tx := models.Transaction{
		ID:        modelID(p.ID),
		Type:      models.TradeSide(p.Type),
		Amount:    p.Amount,
		Price:     p.Price,
		Timestamp: p.Timestamp,
		Profit:    p.Profit,
		TxHash:    p.TxHash,
	}
	if p.BotID != nil {
		tx.BotID = modelID(*p.BotID)
	}
	return tx
}
