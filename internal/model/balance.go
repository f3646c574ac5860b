package model

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	UserAddress    string `json:"user_address"`
	DefaultAddress string `json:"default_address"`
	AssetID        string `json:"asset_id"`
	Amount         string `json:"amount"`
	USDValue       string `json:"usd_value,omitempty"`
}
