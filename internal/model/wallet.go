package model

import "encoding/json"

// WalletRecord is one entry of the wallet registry file.
// Data is the credential blob exported by the custody provider; its shape is
// owned by the provider and it is kept verbatim.
type WalletRecord struct {
	UserAddress string          `json:"user_address"`
	Data        json.RawMessage `json:"data"`
}

// WalletRequest represents request for POST /wallet/create
type WalletRequest struct {
	UserAddress string `json:"user_address"`
}

// WalletResponse represents response for POST /wallet/create and GET /wallet
type WalletResponse struct {
	UserAddress    string `json:"user_address"`
	WalletID       string `json:"wallet_id"`
	NetworkID      string `json:"network_id"`
	DefaultAddress string `json:"default_address"`
	QR             string `json:"qr,omitempty"`
	Created        bool   `json:"created"`
	Message        string `json:"message,omitempty"`
}
