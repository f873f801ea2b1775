// Package store holds the console's single authoritative in-memory view of
// bots, transactions and selection, and mediates every mutation through the
// backend client. The backend stays the system of record; everything here is
// a cache between explicit reloads.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knocoin/console/pkg/backend"
	"github.com/knocoin/console/pkg/models"
)

// ErrNotFound is returned when an operation references a bot id no longer in
// the local collection, e.g. after a racing delete.
var ErrNotFound = errors.New("bot not found")

// PriceSource reads the external price quote. A nil result means the price
// is currently unknown, which callers treat as a normal transient state.
type PriceSource interface {
	CurrentPrice(ctx context.Context) *float64
}

// Store is the injectable state container behind the console views. It is
// constructed once per session; views mutate state only through its
// operations.
type Store struct {
	client backend.Client
	prices PriceSource
	logger *logrus.Logger

	mu            sync.RWMutex
	bots          []models.BotConfig
	transactions  []models.Transaction
	selectedBotID string
	loading       bool
	currentPrice  *float64

	// reloadSeq tags each reload so a slower, earlier-issued reload can
	// never overwrite a later one.
	reloadSeq uint64

	// pendingToggles coalesces a second toggle on the same bot while the
	// first is still in flight.
	pendingToggles map[string]struct{}

	onChange func()
}

func New(client backend.Client, prices PriceSource, logger *logrus.Logger) *Store {
	return &Store{
		client:         client,
		prices:         prices,
		logger:         logger,
		pendingToggles: make(map[string]struct{}),
	}
}

// SetOnChange registers a callback invoked after every state change. Used by
// the console server to push snapshots to connected browsers.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Reload fetches bots and transactions concurrently and replaces both
// collections wholesale. Failures are logged and swallowed: a failed reload
// leaves prior state intact, because an unattended timer-driven failure must
// not interrupt the operator.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	s.reloadSeq++
	seq := s.reloadSeq
	s.loading = true
	s.mu.Unlock()

	var (
		wg      sync.WaitGroup
		bots    []models.BotConfig
		txs     []models.Transaction
		botsErr error
		txsErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		bots, botsErr = s.client.ListBots(ctx)
	}()
	go func() {
		defer wg.Done()
		txs, txsErr = s.client.ListTransactions(ctx, "")
	}()
	wg.Wait()

	s.mu.Lock()
	if seq != s.reloadSeq {
		// A newer reload was issued while this one was in flight.
		s.mu.Unlock()
		return
	}
	s.loading = false
	if botsErr != nil || txsErr != nil {
		s.mu.Unlock()
		if botsErr != nil {
			s.logger.WithError(botsErr).Error("Failed to reload bots")
		}
		if txsErr != nil {
			s.logger.WithError(txsErr).Error("Failed to reload transactions")
		}
		return
	}
	for i := range bots {
		bots[i].Normalize()
	}
	s.bots = bots
	s.transactions = txs
	s.mu.Unlock()

	s.notify()
}

// RefreshPrice reads the external quote. A nil quote replaces the previous
// observation: a stale price is worse than no price.
func (s *Store) RefreshPrice(ctx context.Context) {
	price := s.prices.CurrentPrice(ctx)

	s.mu.Lock()
	s.currentPrice = price
	s.mu.Unlock()

	s.notify()
}

// SelectBot records the selection. Pure state update, always succeeds.
func (s *Store) SelectBot(id string) {
	s.mu.Lock()
	s.selectedBotID = id
	s.mu.Unlock()

	s.notify()
}

// AddBot validates and creates a bot, then triggers a full reload so the
// backend remains the source of truth for generated fields. When the backend
// fails to assign an identifier the bot is kept locally under a generated
// one so the console stays usable offline.
func (s *Store) AddBot(ctx context.Context, bot models.BotConfig) error {
	if err := bot.ValidateForCreate(); err != nil {
		return err
	}

	created, err := s.client.CreateBot(ctx, bot)
	if err != nil {
		return err
	}

	if created.ID == "" || created.ID == "0" {
		created.ID = localBotID()
		created.Normalize()
		s.mu.Lock()
		s.bots = append(s.bots, created)
		s.mu.Unlock()
		s.notify()
		return nil
	}

	s.Reload(ctx)
	return nil
}

// UpdateBotConfig maps and sends a partial update, then applies the same
// fields to the local copy immediately. The edit must be visible without a
// second round-trip: the save flow also writes the wallet side-channel and
// the UI must not appear to hang.
func (s *Store) UpdateBotConfig(ctx context.Context, id string, update backend.BotUpdate) error {
	s.mu.RLock()
	idx := s.indexOf(id)
	var current models.BotConfig
	if idx >= 0 {
		current = s.bots[idx]
	}
	s.mu.RUnlock()

	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := update.Validate(current); err != nil {
		return err
	}

	if _, err := s.client.UpdateBot(ctx, id, update); err != nil {
		return err
	}

	s.mu.Lock()
	if idx := s.indexOf(id); idx >= 0 {
		update.Apply(&s.bots[idx])
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// SaveWalletConfig writes the sensitive wallet fields through the dedicated
// endpoint. An empty private key means the operator left the field blank, so
// no call is made at all: a blank must never overwrite a stored secret.
func (s *Store) SaveWalletConfig(ctx context.Context, id string, wallet models.BotConfig) error {
	if wallet.WalletPrivateKey == "" {
		return nil
	}
	if !models.ValidPrivateKey(wallet.WalletPrivateKey) {
		return fmt.Errorf("%w: invalid private key format", models.ErrValidation)
	}
	if wallet.WalletAddress != "" && !models.ValidWalletAddress(wallet.WalletAddress) {
		return fmt.Errorf("%w: invalid wallet address format", models.ErrValidation)
	}

	s.mu.RLock()
	idx := s.indexOf(id)
	s.mu.RUnlock()
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.client.UpdateWallet(ctx, id, wallet); err != nil {
		return err
	}

	s.mu.Lock()
	if idx := s.indexOf(id); idx >= 0 {
		b := &s.bots[idx]
		if wallet.WalletAddress != "" {
			b.WalletAddress = wallet.WalletAddress
		}
		if wallet.RPCEndpoint != "" {
			b.RPCEndpoint = wallet.RPCEndpoint
		}
		// The key itself is write-only and never cached.
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// ToggleBot starts or stops a bot with an optimistic flip: apply the
// candidate state synchronously, issue the request, and revert to the prior
// state if the request fails. A second toggle on the same bot while one is
// in flight is coalesced into a no-op.
func (s *Store) ToggleBot(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, inFlight := s.pendingToggles[id]; inFlight {
		s.mu.Unlock()
		return nil
	}
	wasActive := s.bots[idx].IsActive
	prevStatus := s.bots[idx].Status
	s.bots[idx].SetRunning(!wasActive)
	s.pendingToggles[id] = struct{}{}
	s.mu.Unlock()

	s.notify()

	var err error
	if wasActive {
		err = s.client.StopBot(ctx, id)
	} else {
		err = s.client.StartBot(ctx, id)
	}

	s.mu.Lock()
	delete(s.pendingToggles, id)
	if err != nil {
		// Snap back to the exact prior pair, not a normalized equivalent: a
		// failed start on a bot that was in error must still read as error.
		if idx := s.indexOf(id); idx >= 0 {
			s.bots[idx].IsActive = wasActive
			s.bots[idx].Status = prevStatus
		}
	}
	s.mu.Unlock()

	s.notify()
	return err
}

// DeleteBot removes the bot remotely, drops it locally, and moves the
// selection off the deleted id before reloading.
func (s *Store) DeleteBot(ctx context.Context, id string) error {
	if err := s.client.DeleteBot(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if idx := s.indexOf(id); idx >= 0 {
		s.bots = append(s.bots[:idx], s.bots[idx+1:]...)
	}
	if s.selectedBotID == id {
		if len(s.bots) > 0 {
			s.selectedBotID = s.bots[0].ID
		} else {
			s.selectedBotID = models.DefaultBotID
		}
	}
	s.mu.Unlock()

	s.notify()
	s.Reload(ctx)
	return nil
}

// UpdateReferencePrice sets the threshold baseline and reloads rather than
// trusting the local echo, since the backend may clamp or reject the value.
func (s *Store) UpdateReferencePrice(ctx context.Context, id string, price float64) error {
	s.mu.RLock()
	idx := s.indexOf(id)
	s.mu.RUnlock()
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.client.UpdateReferencePrice(ctx, id, price); err != nil {
		return err
	}

	s.Reload(ctx)
	return nil
}

// indexOf must be called with the mutex held.
func (s *Store) indexOf(id string) int {
	for i := range s.bots {
		if s.bots[i].ID == id {
			return i
		}
	}
	return -1
}

func localBotID() string {
	return fmt.Sprintf("bot-%d", time.Now().UnixNano())
}
