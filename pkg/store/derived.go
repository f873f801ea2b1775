package store

import (
	"time"

	"github.com/knocoin/console/pkg/models"
	"github.com/knocoin/console/pkg/thresholds"
)

// Bots returns a copy of the bot collection.
func (s *Store) Bots() []models.BotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BotConfig, len(s.bots))
	copy(out, s.bots)
	return out
}

// Transactions returns a copy of the transaction list in backend order.
func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// ActiveBots is the derived set of running bot ids.
func (s *Store) ActiveBots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.bots))
	for i := range s.bots {
		if s.bots[i].IsActive {
			ids = append(ids, s.bots[i].ID)
		}
	}
	return ids
}

// SelectedBotID returns the current selection, which may lag the collection.
func (s *Store) SelectedBotID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedBotID
}

// SelectedBot resolves the selection: the selected bot if present, else the
// first bot, else the placeholder, so views never dereference a missing bot.
func (s *Store) SelectedBot() models.BotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(s.selectedBotID); idx >= 0 {
		return s.bots[idx]
	}
	if len(s.bots) > 0 {
		return s.bots[0]
	}
	return models.DefaultBot()
}

// Loading reports whether a reload is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// CurrentPrice returns the last observed quote, nil when unknown.
func (s *Store) CurrentPrice() *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentPrice == nil {
		return nil
	}
	price := *s.currentPrice
	return &price
}

// BotStats is the per-bot dashboard summary derived from local state.
type BotStats struct {
	BotID         string   `json:"bot_id"`
	BotName       string   `json:"bot_name"`
	Status        string   `json:"status"`
	IsActive      bool     `json:"is_active"`
	BuyThreshold  *float64 `json:"buy_threshold"`
	SellThreshold *float64 `json:"sell_threshold"`
	CurrentPrice  *float64 `json:"current_price"`
	ShouldBuy     bool     `json:"should_buy"`
	ShouldSell    bool     `json:"should_sell"`
	Balance       float64  `json:"balance"`
	TotalProfit   float64  `json:"total_profit"`
	TotalTrades   int      `json:"total_trades"`
	BuyTrades     int      `json:"buy_trades"`
	SellTrades    int      `json:"sell_trades"`
	TodayTrades   int      `json:"today_trades"`
	TodayProfit   float64  `json:"today_profit"`
	SuccessRate   float64  `json:"success_rate"`
}

// Stats summarizes a bot's trading activity and trigger state. Returns
// ErrNotFound when the id is not in the local collection.
func (s *Store) Stats(id string) (BotStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return BotStats{}, ErrNotFound
	}
	bot := s.bots[idx]

	pair := thresholds.Compute(bot.ReferencePrice, bot.VolatilityPercent)
	stats := BotStats{
		BotID:         bot.ID,
		BotName:       bot.Name,
		Status:        string(bot.Status),
		IsActive:      bot.IsActive,
		BuyThreshold:  pair.Buy,
		SellThreshold: pair.Sell,
		CurrentPrice:  s.currentPrice,
		ShouldBuy:     thresholds.ShouldBuy(s.currentPrice, pair),
		ShouldSell:    thresholds.ShouldSell(s.currentPrice, pair),
		Balance:       bot.Balance,
		TotalProfit:   bot.TotalProfit,
	}

	today := time.Now().Format("2006-01-02")
	for i := range s.transactions {
		tx := &s.transactions[i]
		// Unattributed transactions count toward no bot.
		if tx.BotID != id {
			continue
		}
		stats.TotalTrades++
		switch tx.Type {
		case models.SideBuy:
			stats.BuyTrades++
		case models.SideSell:
			stats.SellTrades++
		}
		if len(tx.Timestamp) >= len(today) && tx.Timestamp[:len(today)] == today {
			stats.TodayTrades++
			if tx.Profit != nil {
				stats.TodayProfit += *tx.Profit
			}
		}
	}
	if stats.BuyTrades > 0 {
		stats.SuccessRate = float64(stats.SellTrades) / float64(stats.BuyTrades) * 100
	}
	return stats, nil
}

// Snapshot is the full console state pushed to browser sessions.
type Snapshot struct {
	Bots          []models.BotConfig   `json:"bots"`
	ActiveBots    []string             `json:"active_bots"`
	SelectedBotID string               `json:"selected_bot_id"`
	SelectedBot   models.BotConfig     `json:"selected_bot"`
	Transactions  []models.Transaction `json:"transactions"`
	CurrentPrice  *float64             `json:"current_price"`
	Loading       bool                 `json:"loading"`
}

// State assembles a consistent snapshot of the whole store.
func (s *Store) State() Snapshot {
	snap := Snapshot{
		Bots:          s.Bots(),
		ActiveBots:    s.ActiveBots(),
		SelectedBotID: s.SelectedBotID(),
		SelectedBot:   s.SelectedBot(),
		Transactions:  s.Transactions(),
		CurrentPrice:  s.CurrentPrice(),
		Loading:       s.Loading(),
	}
	for i := range snap.Bots {
		snap.Bots[i].WalletPrivateKey = ""
	}
	snap.SelectedBot.WalletPrivateKey = ""
	return snap
}
