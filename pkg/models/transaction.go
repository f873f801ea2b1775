package models

// TradeSide is the direction of an executed trade.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Transaction is one executed trade, created exclusively by the backend and
// immutable once observed by the console.
type Transaction struct {
	ID        string    `json:"id"`
	BotID     string    `json:"bot_id,omitempty"`
	Type      TradeSide `json:"type"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	Timestamp string    `json:"timestamp"`
	Profit    *float64  `json:"profit,omitempty"`
	TxHash    string    `json:"tx_hash,omitempty"`
}
