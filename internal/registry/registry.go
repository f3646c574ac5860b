// Package registry maps user-facing addresses to custodial wallet credentials.
//
// A Registry holds at most one credential per user address. Create is
// create-if-absent: concurrent creates for the same address are serialized so
// the custody provider is asked for at most one wallet per address.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AlexZinkM/yield-agent/internal/custody"
	"github.com/AlexZinkM/yield-agent/internal/metrics"
	"github.com/AlexZinkM/yield-agent/internal/model"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// CreateResult is the outcome of Create. Created is false when a wallet was
// already registered for the address and left untouched.
type CreateResult struct {
	Credential json.RawMessage
	Created    bool
}

// Registry is the durable user address -> credential mapping.
type Registry struct {
	store     Store
	provider  custody.Provider
	networkID string
	locks     *addressLocks
}

// New returns a Registry creating wallets on networkID through provider.
func New(store Store, provider custody.Provider, networkID string) *Registry {
	return &Registry{
		store:     store,
		provider:  provider,
		networkID: networkID,
		locks:     newAddressLocks(),
	}
}

// NetworkID returns the network new wallets are created on
func (r *Registry) NetworkID() string {
	return r.networkID
}

// Create registers a new custodial wallet for userAddress unless one exists.
func (r *Registry) Create(ctx context.Context, userAddress string) (*CreateResult, error) {
	userAddress, err := normalizeAddress(userAddress)
	if err != nil {
		return nil, err
	}

	unlock, err := r.locks.lock(ctx, userAddress)
	if err != nil {
		return nil, fmt.Errorf("waiting for pending create of %s: %w", userAddress, err)
	}
	defer unlock()

	existing, err := r.store.Get(ctx, userAddress)
	switch {
	case err == nil:
		log.WithField("user_address", userAddress).Info("wallet already exists")
		metrics.WalletCreations.WithLabelValues("exists").Inc()
		return &CreateResult{Credential: existing.Data, Created: false}, nil
	case !errors.Is(err, ErrRecordNotFound):
		metrics.WalletCreations.WithLabelValues("failed").Inc()
		return nil, asPersistenceError("read", err)
	}

	raw, err := r.provider.CreateWallet(ctx, r.networkID)
	if err != nil {
		metrics.WalletCreations.WithLabelValues("failed").Inc()
		return nil, &CustodyError{Op: "create wallet", Err: err}
	}
	credential, err := compactCredential(raw)
	if err != nil {
		metrics.WalletCreations.WithLabelValues("failed").Inc()
		return nil, &CustodyError{Op: "create wallet", Err: err}
	}

	record := model.WalletRecord{UserAddress: userAddress, Data: credential}
	if err := r.store.Add(ctx, record); err != nil {
		metrics.WalletCreations.WithLabelValues("failed").Inc()
		if errors.Is(err, ErrRecordExists) {
			summary, _ := custody.Summarize(credential)
			log.WithField("user_address", userAddress).
				WithField("wallet_id", summary.WalletID).
				Error("registry written concurrently by another process, created wallet is orphaned")
			return nil, &DuplicateCreateError{
				UserAddress:      userAddress,
				OrphanedWalletID: summary.WalletID,
			}
		}
		log.WithError(err).WithField("user_address", userAddress).Error("failed to persist wallet")
		return nil, asPersistenceError("write", err)
	}

	log.WithField("user_address", userAddress).
		WithField("network_id", r.networkID).
		Info("wallet created")
	metrics.WalletCreations.WithLabelValues("created").Inc()

	return &CreateResult{Credential: credential, Created: true}, nil
}

// Lookup returns the credential registered for userAddress or a NotFoundError.
func (r *Registry) Lookup(ctx context.Context, userAddress string) (json.RawMessage, error) {
	userAddress, err := normalizeAddress(userAddress)
	if err != nil {
		return nil, err
	}

	record, err := r.store.Get(ctx, userAddress)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{UserAddress: userAddress}
		}
		return nil, asPersistenceError("read", err)
	}
	return record.Data, nil
}

// Rehydrate rebuilds the wallet registered for userAddress. The returned
// handle is not persisted; callers rebuild it per operation.
func (r *Registry) Rehydrate(ctx context.Context, userAddress string) (custody.Wallet, error) {
	credential, err := r.Lookup(ctx, userAddress)
	if err != nil {
		return nil, err
	}

	wallet, err := r.provider.Rehydrate(ctx, credential)
	if err != nil {
		return nil, &CustodyError{Op: "rehydrate wallet", Err: err}
	}
	return wallet, nil
}

// Records returns every registered record
func (r *Registry) Records(ctx context.Context) ([]model.WalletRecord, error) {
	records, err := r.store.All(ctx)
	if err != nil {
		return nil, asPersistenceError("read", err)
	}
	return records, nil
}

func normalizeAddress(userAddress string) (string, error) {
	userAddress = strings.TrimSpace(userAddress)
	if userAddress == "" {
		return "", &ValidationError{Field: "user_address", Reason: "must not be empty"}
	}
	return userAddress, nil
}

func asPersistenceError(op string, err error) error {
	if IsPersistenceError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// addressLocks hands out one mutex per address, dropping it once unused.
type addressLocks struct {
	mu    sync.Mutex
	locks map[string]*addressLock
}

type addressLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newAddressLocks() *addressLocks {
	return &addressLocks{locks: make(map[string]*addressLock)}
}

// lock blocks until the address is free or ctx is done.
func (l *addressLocks) lock(ctx context.Context, address string) (func(), error) {
	l.mu.Lock()
	al, ok := l.locks[address]
	if !ok {
		al = &addressLock{sem: semaphore.NewWeighted(1)}
		l.locks[address] = al
	}
	al.refs++
	l.mu.Unlock()

	if err := al.sem.Acquire(ctx, 1); err != nil {
		l.release(address, al)
		return nil, err
	}

	return func() {
		al.sem.Release(1)
		l.release(address, al)
	}, nil
}

func (l *addressLocks) release(address string, al *addressLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	al.refs--
	if al.refs == 0 {
		delete(l.locks, address)
	}
}
