package wallet

import (
	"context"
	"strings"

	"github.com/AlexZinkM/yield-agent/internal/model"

	log "github.com/sirupsen/logrus"
)

// Balance gets the balance of assetID held by the wallet of userAddress
func (s *Service) Balance(ctx context.Context, userAddress, assetID string) (*model.BalanceResponse, error) {
	userAddress, err := s.validateAddress(userAddress)
	if err != nil {
		return nil, err
	}
	assetID = strings.ToLower(strings.TrimSpace(assetID))

	w, err := s.registry.Rehydrate(ctx, userAddress)
	if err != nil {
		return nil, err
	}

	amount, err := w.Balance(ctx, assetID)
	if err != nil {
		return nil, wrapWalletError("balance", w.NetworkID(), err)
	}

	resp := &model.BalanceResponse{
		UserAddress:    userAddress,
		DefaultAddress: w.DefaultAddress(),
		AssetID:        assetID,
		Amount:         amount.String(),
	}

	// Quote in USD (best effort, the balance itself is authoritative)
	if s.opts.Prices != nil && assetID != "" {
		price, err := s.opts.Prices.GetPriceUSD(ctx, assetID)
		if err != nil {
			log.WithError(err).WithField("asset_id", assetID).Debug("failed to get price")
		} else {
			resp.USDValue = amount.Mul(price).StringFixed(2)
		}
	}

	return resp, nil
}
