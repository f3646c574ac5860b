package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/model"

	"github.com/shopspring/decimal"
)

const (
	defiLlamaYieldsAPI = "https://yields.llama.fi"
	defiLlamaCoinsAPI  = "https://coins.llama.fi"
)

// coinIDs maps wallet asset ids to coingecko ids understood by the prices API
var coinIDs = map[string]string{
	"sol":   "solana",
	"usdc":  "usd-coin",
	"eth":   "ethereum",
	"weth":  "weth",
	"cbbtc": "coinbase-wrapped-btc",
}

// DefiLlamaClient client for DefiLlama yields and prices APIs
type DefiLlamaClient struct {
	yieldsURL string
	coinsURL  string
	client    *http.Client
}

// NewDefiLlamaClient creates a new DefiLlama client. Empty urls fall back to
// the public endpoints.
func NewDefiLlamaClient(yieldsURL, coinsURL string) *DefiLlamaClient {
	if yieldsURL == "" {
		yieldsURL = defiLlamaYieldsAPI
	}
	if coinsURL == "" {
		coinsURL = defiLlamaCoinsAPI
	}
	return &DefiLlamaClient{
		yieldsURL: strings.TrimRight(yieldsURL, "/"),
		coinsURL:  strings.TrimRight(coinsURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PoolsResponse response from the /pools endpoint
type PoolsResponse struct {
	Status string              `json:"status"`
	Data   []model.YieldRecord `json:"data"`
}

// GetPools downloads every yield pool tracked by DefiLlama
func (c *DefiLlamaClient) GetPools(ctx context.Context) ([]model.YieldRecord, error) {
	var poolsResp PoolsResponse
	if err := c.getJSON(ctx, c.yieldsURL+"/pools", &poolsResp); err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}
	if poolsResp.Status != "" && poolsResp.Status != "success" {
		return nil, fmt.Errorf("failed to get pools: status %q", poolsResp.Status)
	}
	return poolsResp.Data, nil
}

// PriceResponse response from the /prices/current endpoint
type PriceResponse struct {
	Coins map[string]struct {
		Price  float64 `json:"price"`
		Symbol string  `json:"symbol"`
	} `json:"coins"`
}

// GetPriceUSD gets the current USD price of a wallet asset ("sol", "usdc", ...)
func (c *DefiLlamaClient) GetPriceUSD(ctx context.Context, assetID string) (decimal.Decimal, error) {
	coinID, ok := coinIDs[strings.ToLower(assetID)]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price source for asset %q", assetID)
	}
	key := "coingecko:" + coinID

	var priceResp PriceResponse
	if err := c.getJSON(ctx, c.coinsURL+"/prices/current/"+url.PathEscape(key), &priceResp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get price: %w", err)
	}

	coin, ok := priceResp.Coins[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("failed to get price: %s missing from response", key)
	}
	return decimal.NewFromFloat(coin.Price), nil
}

func (c *DefiLlamaClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
