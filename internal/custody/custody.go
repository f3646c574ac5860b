// Package custody defines the wallet custody port and its implementations.
package custody

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedOperation is returned by wallets whose provider cannot perform an action
var ErrUnsupportedOperation = errors.New("operation not supported by custody provider")

// Provider creates custodial wallets and rebuilds them from exported credentials.
type Provider interface {
	// CreateWallet creates a new wallet on networkID and returns its
	// exportable credential blob.
	CreateWallet(ctx context.Context, networkID string) (json.RawMessage, error)
	// Rehydrate rebuilds a usable wallet from a credential blob previously
	// returned by CreateWallet.
	Rehydrate(ctx context.Context, credential json.RawMessage) (Wallet, error)
}

// Wallet is a rehydrated custodial wallet. Mutating methods return the
// transaction hash of the broadcast operation.
type Wallet interface {
	ID() string
	NetworkID() string
	DefaultAddress() string
	Fund(ctx context.Context, assetID string) (string, error)
	Mint(ctx context.Context, assetID string, amount decimal.Decimal) (string, error)
	Swap(ctx context.Context, spender, tokenIn, tokenOut string, amount decimal.Decimal) (string, error)
	Stake(ctx context.Context, assetID, protocol, spender string, amount decimal.Decimal) (string, error)
	Balance(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// Config is the explicit configuration handed to a provider at construction.
type Config struct {
	APIKeyName       string
	APIKeyPrivateKey string
	BaseURL          string
	Timeout          time.Duration
	// RequestsPerSecond caps outbound calls; zero disables the limit.
	RequestsPerSecond int
}

// Summary is the non-secret identity of a credential
type Summary struct {
	WalletID       string `json:"wallet_id"`
	NetworkID      string `json:"network_id"`
	DefaultAddress string `json:"default_address"`
}

// Summarize reads the non-secret identity fields shared by every provider's
// credential format without rehydrating the wallet.
func Summarize(credential json.RawMessage) (Summary, error) {
	var s Summary
	if err := json.Unmarshal(credential, &s); err != nil {
		return Summary{}, err
	}
	if s.WalletID == "" {
		return Summary{}, errors.New("credential has no wallet_id")
	}
	return s, nil
}
