package wallet

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/AlexZinkM/yield-agent/internal/custody"
	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/AlexZinkM/yield-agent/internal/registry"

	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// Create registers a custodial wallet for userAddress, or returns the one
// already registered with Created set to false.
func (s *Service) Create(ctx context.Context, userAddress string) (*model.WalletResponse, error) {
	userAddress, err := s.validateAddress(userAddress)
	if err != nil {
		return nil, err
	}

	result, err := s.registry.Create(ctx, userAddress)
	if err != nil {
		return nil, err
	}

	summary, err := custody.Summarize(result.Credential)
	if err != nil {
		return nil, &registry.CustodyError{Op: "read credential", Err: err}
	}

	// Generate QR code
	qrCode, err := generateQRCode(summary.DefaultAddress)
	if err != nil {
		// the wallet is registered either way
		log.WithError(err).WithField("user_address", userAddress).Warn("failed to generate QR code")
	}

	resp := &model.WalletResponse{
		UserAddress:    userAddress,
		WalletID:       summary.WalletID,
		NetworkID:      summary.NetworkID,
		DefaultAddress: summary.DefaultAddress,
		QR:             qrCode,
		Created:        result.Created,
	}
	if result.Created {
		resp.Message = "Wallet created"
	} else {
		resp.Message = "Wallet already exists"
	}
	return resp, nil
}

// Lookup returns the public identity of the wallet registered for userAddress
func (s *Service) Lookup(ctx context.Context, userAddress string) (*model.WalletResponse, error) {
	userAddress, err := s.validateAddress(userAddress)
	if err != nil {
		return nil, err
	}

	credential, err := s.registry.Lookup(ctx, userAddress)
	if err != nil {
		return nil, err
	}

	summary, err := custody.Summarize(credential)
	if err != nil {
		return nil, &registry.CustodyError{Op: "read credential", Err: err}
	}

	return &model.WalletResponse{
		UserAddress:    userAddress,
		WalletID:       summary.WalletID,
		NetworkID:      summary.NetworkID,
		DefaultAddress: summary.DefaultAddress,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("empty address")
	}
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
