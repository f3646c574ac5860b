package model

import (
	"errors"
	"strings"

	"github.com/AlexZinkM/yield-agent/internal/common"
)

// FundRequest represents request for POST /wallet/fund
type FundRequest struct {
	UserAddress string `json:"user_address"`
	AssetID     string `json:"asset_id,omitempty"` // empty means the network's native asset
}

// MintRequest represents request for POST /wallet/mint
type MintRequest struct {
	UserAddress string `json:"user_address"`
	AssetID     string `json:"asset_id"`
	Amount      string `json:"amount"`
}

// Validate validates MintRequest fields.
func (r *MintRequest) Validate() error {
	if strings.TrimSpace(r.AssetID) == "" {
		return errors.New("asset_id is required")
	}
	_, err := common.ParseAmount(r.Amount)
	return err
}

// SwapRequest represents request for POST /wallet/swap
type SwapRequest struct {
	UserAddress string `json:"user_address"`
	Spender     string `json:"spender"`
	TokenIn     string `json:"token_in"`
	TokenOut    string `json:"token_out"`
	Amount      string `json:"amount"`
}

// Validate validates SwapRequest fields.
func (r *SwapRequest) Validate() error {
	if strings.TrimSpace(r.Spender) == "" {
		return errors.New("spender is required")
	}
	if strings.TrimSpace(r.TokenIn) == "" || strings.TrimSpace(r.TokenOut) == "" {
		return errors.New("token_in and token_out are required")
	}
	if strings.EqualFold(r.TokenIn, r.TokenOut) {
		return errors.New("token_in and token_out must differ")
	}
	_, err := common.ParseAmount(r.Amount)
	return err
}

// StakeRequest represents request for POST /wallet/stake
type StakeRequest struct {
	UserAddress string `json:"user_address"`
	AssetID     string `json:"asset_id"`
	Protocol    string `json:"protocol"`
	Spender     string `json:"spender"`
	Amount      string `json:"amount"`
}

// Validate validates StakeRequest fields.
func (r *StakeRequest) Validate() error {
	if strings.TrimSpace(r.AssetID) == "" {
		return errors.New("asset_id is required")
	}
	if strings.TrimSpace(r.Protocol) == "" {
		return errors.New("protocol is required")
	}
	if strings.TrimSpace(r.Spender) == "" {
		return errors.New("spender is required")
	}
	_, err := common.ParseAmount(r.Amount)
	return err
}

// TxResponse represents response for the wallet action endpoints
type TxResponse struct {
	UserAddress     string `json:"user_address"`
	TransactionHash string `json:"transaction_hash"`
}
