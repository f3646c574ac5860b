// Package custodytest provides an in-memory custody provider for tests.
package custodytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/AlexZinkM/yield-agent/internal/custody"
	"github.com/shopspring/decimal"
)

// Provider creates fake wallets with sequential ids. Fields ending in Err make
// the matching operation fail.
type Provider struct {
	CreateErr error
	ActionErr error
	Balances  map[string]decimal.Decimal

	created atomic.Int32

	mu    sync.Mutex
	calls []string
}

func (p *Provider) CreateWallet(ctx context.Context, networkID string) (json.RawMessage, error) {
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	n := p.created.Add(1)
	return json.RawMessage(fmt.Sprintf(
		`{"wallet_id":"w-%d","network_id":%q,"default_address":"0x%040d","seed":"seed-%d"}`,
		n, networkID, n, n,
	)), nil
}

func (p *Provider) Rehydrate(ctx context.Context, credential json.RawMessage) (custody.Wallet, error) {
	s, err := custody.Summarize(credential)
	if err != nil {
		return nil, err
	}
	return &Wallet{summary: s, provider: p}, nil
}

// Created returns how many wallets were created
func (p *Provider) Created() int {
	return int(p.created.Load())
}

// Calls returns the wallet operations performed so far, as "op:wallet_id"
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *Provider) record(op, walletID string) error {
	p.mu.Lock()
	p.calls = append(p.calls, op+":"+walletID)
	p.mu.Unlock()
	return p.ActionErr
}

// Wallet is a rehydrated fake wallet
type Wallet struct {
	summary  custody.Summary
	provider *Provider
}

func (w *Wallet) ID() string             { return w.summary.WalletID }
func (w *Wallet) NetworkID() string      { return w.summary.NetworkID }
func (w *Wallet) DefaultAddress() string { return w.summary.DefaultAddress }

func (w *Wallet) Fund(ctx context.Context, assetID string) (string, error) {
	return w.tx("fund")
}

func (w *Wallet) Mint(ctx context.Context, assetID string, amount decimal.Decimal) (string, error) {
	return w.tx("mint")
}

func (w *Wallet) Swap(ctx context.Context, spender, tokenIn, tokenOut string, amount decimal.Decimal) (string, error) {
	return w.tx("swap")
}

func (w *Wallet) Stake(ctx context.Context, assetID, protocol, spender string, amount decimal.Decimal) (string, error) {
	return w.tx("stake")
}

func (w *Wallet) Balance(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if err := w.provider.record("balance", w.summary.WalletID); err != nil {
		return decimal.Zero, err
	}
	return w.provider.Balances[assetID], nil
}

func (w *Wallet) tx(op string) (string, error) {
	if err := w.provider.record(op, w.summary.WalletID); err != nil {
		return "", err
	}
	return "0x" + op + "-" + w.summary.WalletID, nil
}
