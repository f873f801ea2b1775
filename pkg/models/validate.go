package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrValidation marks client-side validation failures. These are surfaced
// before any network call is attempted.
var ErrValidation = errors.New("validation error")

var (
	walletAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	privateKeyRe    = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
)

// ValidWalletAddress reports whether addr is a 0x-prefixed 40-hex-digit
// Ethereum address.
func ValidWalletAddress(addr string) bool {
	return walletAddressRe.MatchString(addr)
}

// ValidPrivateKey reports whether key is a 64-hex-digit private key, with or
// without the 0x prefix.
func ValidPrivateKey(key string) bool {
	return privateKeyRe.MatchString(key)
}

// ValidateForCreate checks the fields required before a bot can be created.
func (b *BotConfig) ValidateForCreate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(b.TokenPair) == "" {
		return fmt.Errorf("%w: token_pair is required", ErrValidation)
	}
	return b.ValidateConfig()
}

// ValidateConfig checks the trading and wallet parameters that hold for any
// saved configuration.
func (b *BotConfig) ValidateConfig() error {
	if b.VolatilityPercent <= 0 || b.VolatilityPercent > 100 {
		return fmt.Errorf("%w: volatility_percent must be in (0, 100], got %v", ErrValidation, b.VolatilityPercent)
	}
	if b.BuyAmount < b.MinSwapAmount {
		return fmt.Errorf("%w: buy_amount %v below min_swap_amount %v", ErrValidation, b.BuyAmount, b.MinSwapAmount)
	}
	if b.SellAmount < b.MinSwapAmount {
		return fmt.Errorf("%w: sell_amount %v below min_swap_amount %v", ErrValidation, b.SellAmount, b.MinSwapAmount)
	}
	if b.WalletAddress != "" && !ValidWalletAddress(b.WalletAddress) {
		return fmt.Errorf("%w: invalid wallet address format", ErrValidation)
	}
	if b.WalletPrivateKey != "" && !ValidPrivateKey(b.WalletPrivateKey) {
		return fmt.Errorf("%w: invalid private key format", ErrValidation)
	}
	return nil
}
