package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/common"
	"github.com/AlexZinkM/yield-agent/internal/custody"
	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/AlexZinkM/yield-agent/internal/registry"

	log "github.com/sirupsen/logrus"
)

// Fund requests testnet funds from the faucet for the wallet of userAddress.
// Each user address may be funded once per cooldown period.
func (s *Service) Fund(ctx context.Context, req model.FundRequest) (*model.TxResponse, error) {
	userAddress, err := s.validateAddress(req.UserAddress)
	if err != nil {
		return nil, err
	}

	// Check cooldown
	release, err := s.reserveFund(userAddress)
	if err != nil {
		return nil, err
	}

	txHash, err := s.perform(ctx, userAddress, "fund", func(w custody.Wallet) (string, error) {
		return w.Fund(ctx, strings.TrimSpace(req.AssetID))
	})
	release(err == nil)
	if err != nil {
		return nil, err
	}

	return &model.TxResponse{UserAddress: userAddress, TransactionHash: txHash}, nil
}

// Mint mints amount of an asset into the wallet of req.UserAddress
func (s *Service) Mint(ctx context.Context, req model.MintRequest) (*model.TxResponse, error) {
	userAddress, err := s.validateAddress(req.UserAddress)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, &registry.ValidationError{Field: "request", Reason: err.Error()}
	}
	amount, _ := common.ParseAmount(req.Amount)

	txHash, err := s.perform(ctx, userAddress, "mint", func(w custody.Wallet) (string, error) {
		return w.Mint(ctx, strings.TrimSpace(req.AssetID), amount)
	})
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{UserAddress: userAddress, TransactionHash: txHash}, nil
}

// Swap trades amount of TokenIn for TokenOut through spender
func (s *Service) Swap(ctx context.Context, req model.SwapRequest) (*model.TxResponse, error) {
	userAddress, err := s.validateAddress(req.UserAddress)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, &registry.ValidationError{Field: "request", Reason: err.Error()}
	}
	amount, _ := common.ParseAmount(req.Amount)

	txHash, err := s.perform(ctx, userAddress, "swap", func(w custody.Wallet) (string, error) {
		return w.Swap(ctx, strings.TrimSpace(req.Spender), strings.TrimSpace(req.TokenIn), strings.TrimSpace(req.TokenOut), amount)
	})
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{UserAddress: userAddress, TransactionHash: txHash}, nil
}

// Stake stakes amount of an asset into protocol through spender
func (s *Service) Stake(ctx context.Context, req model.StakeRequest) (*model.TxResponse, error) {
	userAddress, err := s.validateAddress(req.UserAddress)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, &registry.ValidationError{Field: "request", Reason: err.Error()}
	}
	amount, _ := common.ParseAmount(req.Amount)

	txHash, err := s.perform(ctx, userAddress, "stake", func(w custody.Wallet) (string, error) {
		return w.Stake(ctx, strings.TrimSpace(req.AssetID), strings.TrimSpace(req.Protocol), strings.TrimSpace(req.Spender), amount)
	})
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{UserAddress: userAddress, TransactionHash: txHash}, nil
}

// perform rehydrates the wallet of userAddress and runs one operation on it.
// The rehydrated handle is dropped afterwards.
func (s *Service) perform(ctx context.Context, userAddress, op string, fn func(custody.Wallet) (string, error)) (string, error) {
	w, err := s.registry.Rehydrate(ctx, userAddress)
	if err != nil {
		return "", err
	}

	txHash, err := fn(w)
	if err != nil {
		log.WithError(err).
			WithField("user_address", userAddress).
			WithField("wallet_id", w.ID()).
			Warnf("wallet %s failed", op)
		return "", wrapWalletError(op, w.NetworkID(), err)
	}

	log.WithField("user_address", userAddress).
		WithField("wallet_id", w.ID()).
		WithField("tx", txHash).
		Infof("wallet %s sent", op)
	return txHash, nil
}

func wrapWalletError(op, networkID string, err error) error {
	if errors.Is(err, custody.ErrUnsupportedOperation) {
		return &registry.ValidationError{
			Field:  "operation",
			Reason: fmt.Sprintf("%s is not supported on %s: %v", op, networkID, err),
		}
	}
	return &registry.CustodyError{Op: op, Err: err}
}

// reserveFund claims the faucet slot of userAddress. The returned release
// keeps the claim when the request succeeded and gives it back otherwise.
func (s *Service) reserveFund(userAddress string) (func(ok bool), error) {
	s.fundMutex.Lock()
	defer s.fundMutex.Unlock()

	now := time.Now()
	last, funded := s.lastFundTime[userAddress]
	if funded && s.opts.FaucetCooldown > 0 {
		if elapsed := now.Sub(last); elapsed < s.opts.FaucetCooldown {
			remaining := s.opts.FaucetCooldown - elapsed
			return nil, &registry.ValidationError{
				Field:  "user_address",
				Reason: fmt.Sprintf("faucet cooldown active, please wait %v", remaining.Round(time.Second)),
			}
		}
	}
	s.lastFundTime[userAddress] = now

	return func(ok bool) {
		if ok {
			return
		}
		s.fundMutex.Lock()
		defer s.fundMutex.Unlock()
		if s.lastFundTime[userAddress].Equal(now) {
			if funded {
				s.lastFundTime[userAddress] = last
			} else {
				delete(s.lastFundTime, userAddress)
			}
		}
	}, nil
}
