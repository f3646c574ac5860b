package custody

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	DefaultCDPBaseURL = "https://api.cdp.coinbase.com/platform"

	jwtIssuer   = "cdp"
	jwtLifetime = 2 * time.Minute
)

// APIError is a non-2xx answer of the custody platform
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("custody api returned %d: %s", e.Status, e.Message)
}

// cdpCredential is the exported form of a platform wallet
type cdpCredential struct {
	WalletID       string `json:"wallet_id"`
	NetworkID      string `json:"network_id"`
	DefaultAddress string `json:"default_address"`
}

type cdpWalletResponse struct {
	ID             string `json:"id"`
	NetworkID      string `json:"network_id"`
	DefaultAddress struct {
		AddressID string `json:"address_id"`
	} `json:"default_address"`
}

type cdpTxResponse struct {
	TransactionHash string `json:"transaction_hash"`
}

type cdpBalanceResponse struct {
	Amount string `json:"amount"`
}

type cdpErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CDPProvider manages wallets held by the custody platform over its REST API.
type CDPProvider struct {
	keyName    string
	privateKey *ecdsa.PrivateKey
	baseURL    *url.URL
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter
}

// NewCDPProvider validates cfg and returns a ready provider.
func NewCDPProvider(cfg Config) (*CDPProvider, error) {
	if strings.TrimSpace(cfg.APIKeyName) == "" {
		return nil, errors.New("cdp api key name must not be empty")
	}
	if strings.TrimSpace(cfg.APIKeyPrivateKey) == "" {
		return nil, errors.New("cdp api key private key must not be empty")
	}

	// keys pasted into env files usually carry escaped newlines
	pemKey := strings.ReplaceAll(cfg.APIKeyPrivateKey, `\n`, "\n")
	privateKey, err := jwt.ParseECPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("invalid cdp api key private key: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultCDPBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid cdp base url %q", baseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}

	return &CDPProvider{
		keyName:    cfg.APIKeyName,
		privateKey: privateKey,
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		cb:         newCircuitBreaker(),
		limiter:    limiter,
	}, nil
}

func (p *CDPProvider) CreateWallet(ctx context.Context, networkID string) (json.RawMessage, error) {
	if networkID == "" {
		return nil, errors.New("network id must not be empty")
	}

	var resp cdpWalletResponse
	path := fmt.Sprintf("/v1/networks/%s/wallets", url.PathEscape(networkID))
	if err := p.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" || resp.DefaultAddress.AddressID == "" {
		return nil, errors.New("custody api returned a wallet without id or default address")
	}

	network := resp.NetworkID
	if network == "" {
		network = networkID
	}
	return json.Marshal(cdpCredential{
		WalletID:       resp.ID,
		NetworkID:      network,
		DefaultAddress: resp.DefaultAddress.AddressID,
	})
}

func (p *CDPProvider) Rehydrate(ctx context.Context, credential json.RawMessage) (Wallet, error) {
	var cred cdpCredential
	if err := json.Unmarshal(credential, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	if cred.WalletID == "" || cred.DefaultAddress == "" {
		return nil, errors.New("credential is missing wallet_id or default_address")
	}
	return &cdpWallet{cred: cred, provider: p}, nil
}

// do sends one authenticated JSON request. 5xx answers and transport errors
// count as breaker failures, 4xx answers do not.
func (p *CDPProvider) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	endpoint := *p.baseURL
	endpoint.Path = p.baseURL.Path + path

	p.limiter.Take()

	res, err := p.cb.Execute(func() (interface{}, error) {
		token, err := p.signRequest(method, endpoint.Host+endpoint.Path)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, newAPIError(resp.StatusCode, payload)
		}
		return &rawResponse{status: resp.StatusCode, body: payload}, nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	raw := res.(*rawResponse)
	if raw.status < 200 || raw.status > 299 {
		return fmt.Errorf("%s %s: %w", method, path, newAPIError(raw.status, raw.body))
	}
	if out == nil || len(raw.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw.body, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

type rawResponse struct {
	status int
	body   []byte
}

// signRequest builds the short lived bearer token bound to one request uri.
func (p *CDPProvider) signRequest(method, hostPath string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"sub": p.keyName,
		"iss": jwtIssuer,
		"nbf": now.Unix(),
		"exp": now.Add(jwtLifetime).Unix(),
		"uri": method + " " + hostPath,
	})
	token.Header["kid"] = p.keyName
	token.Header["nonce"] = hex.EncodeToString(nonce)

	return token.SignedString(p.privateKey)
}

func newAPIError(status int, body []byte) *APIError {
	var e cdpErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return &APIError{Status: status, Message: e.Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "cdp",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.7
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Warn("custody platform seems down, stop allowing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				log.Info("checking custody platform status")
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				log.Info("custody platform seems ok, restart allowing requests")
			}
		},
	})
}

type cdpWallet struct {
	cred     cdpCredential
	provider *CDPProvider
}

func (w *cdpWallet) ID() string             { return w.cred.WalletID }
func (w *cdpWallet) NetworkID() string      { return w.cred.NetworkID }
func (w *cdpWallet) DefaultAddress() string { return w.cred.DefaultAddress }

func (w *cdpWallet) Fund(ctx context.Context, assetID string) (string, error) {
	req := map[string]string{}
	if assetID != "" {
		req["asset_id"] = assetID
	}
	return w.post(ctx, "faucet", req)
}

func (w *cdpWallet) Mint(ctx context.Context, assetID string, amount decimal.Decimal) (string, error) {
	return w.post(ctx, "mint", map[string]string{
		"asset_id": assetID,
		"amount":   amount.String(),
	})
}

func (w *cdpWallet) Swap(ctx context.Context, spender, tokenIn, tokenOut string, amount decimal.Decimal) (string, error) {
	return w.post(ctx, "trades", map[string]string{
		"spender":       spender,
		"from_asset_id": tokenIn,
		"to_asset_id":   tokenOut,
		"amount":        amount.String(),
	})
}

func (w *cdpWallet) Stake(ctx context.Context, assetID, protocol, spender string, amount decimal.Decimal) (string, error) {
	return w.post(ctx, "stake", map[string]string{
		"asset_id": assetID,
		"protocol": protocol,
		"spender":  spender,
		"amount":   amount.String(),
	})
}

func (w *cdpWallet) Balance(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if assetID == "" {
		assetID = "eth"
	}
	var resp cdpBalanceResponse
	path := fmt.Sprintf("/v1/wallets/%s/balances/%s", url.PathEscape(w.cred.WalletID), url.PathEscape(assetID))
	if err := w.provider.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return decimal.Zero, err
	}
	if resp.Amount == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(resp.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid balance amount %q: %w", resp.Amount, err)
	}
	return amount, nil
}

func (w *cdpWallet) post(ctx context.Context, action string, req any) (string, error) {
	var resp cdpTxResponse
	path := fmt.Sprintf("/v1/wallets/%s/%s", url.PathEscape(w.cred.WalletID), action)
	if err := w.provider.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", err
	}
	if resp.TransactionHash == "" {
		return "", fmt.Errorf("%s: custody api returned no transaction hash", action)
	}
	return resp.TransactionHash, nil
}
