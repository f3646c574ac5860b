// Package wallet exposes the custodial wallet operations offered to HTTP
// clients and agent tools on top of the wallet registry.
package wallet

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/common"
	"github.com/AlexZinkM/yield-agent/internal/custody"
	"github.com/AlexZinkM/yield-agent/internal/registry"

	"github.com/shopspring/decimal"
)

// Registry is the part of registry.Registry the service depends on
type Registry interface {
	NetworkID() string
	Create(ctx context.Context, userAddress string) (*registry.CreateResult, error)
	Lookup(ctx context.Context, userAddress string) (json.RawMessage, error)
	Rehydrate(ctx context.Context, userAddress string) (custody.Wallet, error)
}

// PriceSource quotes assets in USD
type PriceSource interface {
	GetPriceUSD(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// Options tune the service
type Options struct {
	// FaucetCooldown is the minimum time between two faucet requests of one user address
	FaucetCooldown time.Duration
	// StrictAddressValidation checks user addresses against the network's address format
	StrictAddressValidation bool
	// Prices is optional; when set balances carry a usd value
	Prices PriceSource
}

// Service performs wallet operations for user addresses.
type Service struct {
	registry Registry
	opts     Options

	fundMutex    sync.Mutex
	lastFundTime map[string]time.Time
}

// NewService creates a new wallet service
func NewService(reg Registry, opts Options) *Service {
	return &Service{
		registry:     reg,
		opts:         opts,
		lastFundTime: make(map[string]time.Time),
	}
}

// NetworkID returns the network wallets are created on
func (s *Service) NetworkID() string {
	return s.registry.NetworkID()
}

func (s *Service) validateAddress(userAddress string) (string, error) {
	userAddress = strings.TrimSpace(userAddress)
	if userAddress == "" {
		return "", &registry.ValidationError{Field: "user_address", Reason: "must not be empty"}
	}
	if s.opts.StrictAddressValidation {
		if err := common.ValidateAddress(s.registry.NetworkID(), userAddress); err != nil {
			return "", &registry.ValidationError{Field: "user_address", Reason: err.Error()}
		}
	}
	return userAddress, nil
}
