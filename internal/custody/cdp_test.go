package custody

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testKeyName = "organizations/test/apiKeys/key-1"

func newTestKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

// fakePlatform checks every request's bearer token and routes it to handlers
// keyed by "METHOD /path".
type fakePlatform struct {
	key      *ecdsa.PrivateKey
	handlers map[string]func(w http.ResponseWriter, body map[string]string)
	calls    int32
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.calls, 1)

	auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(auth, claims, func(token *jwt.Token) (interface{}, error) {
		return &f.key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	if err != nil || !token.Valid {
		http.Error(w, `{"code":"unauthorized","message":"bad token"}`, http.StatusUnauthorized)
		return
	}
	if claims["sub"] != testKeyName || claims["iss"] != "cdp" || token.Header["kid"] != testKeyName {
		http.Error(w, `{"code":"unauthorized","message":"bad claims"}`, http.StatusUnauthorized)
		return
	}
	if want := r.Method + " " + r.Host + r.URL.Path; claims["uri"] != want {
		http.Error(w, `{"code":"unauthorized","message":"uri mismatch"}`, http.StatusUnauthorized)
		return
	}
	if nonce, _ := token.Header["nonce"].(string); nonce == "" {
		http.Error(w, `{"code":"unauthorized","message":"missing nonce"}`, http.StatusUnauthorized)
		return
	}

	body := map[string]string{}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	h, ok := f.handlers[r.Method+" "+r.URL.Path]
	if !ok {
		http.Error(w, `{"code":"not_found","message":"no such route"}`, http.StatusNotFound)
		return
	}
	h(w, body)
}

func newTestCDP(t *testing.T, handlers map[string]func(http.ResponseWriter, map[string]string)) (*CDPProvider, *fakePlatform) {
	key, pemKey := newTestKey(t)
	platform := &fakePlatform{key: key, handlers: handlers}
	srv := httptest.NewServer(platform)
	t.Cleanup(srv.Close)

	p, err := NewCDPProvider(Config{
		APIKeyName:       testKeyName,
		APIKeyPrivateKey: pemKey,
		BaseURL:          srv.URL,
		Timeout:          5 * time.Second,
	})
	require.NoError(t, err)
	return p, platform
}

func walletHandler(w http.ResponseWriter, _ map[string]string) {
	fmt.Fprint(w, `{"id":"w-1","network_id":"base-sepolia","default_address":{"address_id":"0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"}}`)
}

func TestCDPProvider(t *testing.T) {
	t.Run("CreateAndRehydrate", func(t *testing.T) {
		p, _ := newTestCDP(t, map[string]func(http.ResponseWriter, map[string]string){
			"POST /v1/networks/base-sepolia/wallets": walletHandler,
		})

		raw, err := p.CreateWallet(t.Context(), "base-sepolia")
		require.NoError(t, err)
		require.JSONEq(t, `{"wallet_id":"w-1","network_id":"base-sepolia","default_address":"0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"}`, string(raw))

		summary, err := Summarize(raw)
		require.NoError(t, err)
		require.Equal(t, "w-1", summary.WalletID)

		w, err := p.Rehydrate(t.Context(), raw)
		require.NoError(t, err)
		require.Equal(t, "w-1", w.ID())
		require.Equal(t, "base-sepolia", w.NetworkID())
		require.Equal(t, "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4", w.DefaultAddress())
	})

	t.Run("WalletActions", func(t *testing.T) {
		var (
			mu  sync.Mutex
			got []map[string]string
		)
		tx := func(hash string) func(http.ResponseWriter, map[string]string) {
			return func(w http.ResponseWriter, body map[string]string) {
				mu.Lock()
				got = append(got, body)
				mu.Unlock()
				fmt.Fprintf(w, `{"transaction_hash":%q}`, hash)
			}
		}
		p, _ := newTestCDP(t, map[string]func(http.ResponseWriter, map[string]string){
			"POST /v1/wallets/w-1/faucet": tx("0xfaucet"),
			"POST /v1/wallets/w-1/mint":   tx("0xmint"),
			"POST /v1/wallets/w-1/trades": tx("0xswap"),
			"POST /v1/wallets/w-1/stake":  tx("0xstake"),
			"GET /v1/wallets/w-1/balances/usdc": func(w http.ResponseWriter, _ map[string]string) {
				fmt.Fprint(w, `{"amount":"12.5"}`)
			},
		})

		w, err := p.Rehydrate(t.Context(), json.RawMessage(`{"wallet_id":"w-1","network_id":"base-sepolia","default_address":"0xabc"}`))
		require.NoError(t, err)

		hash, err := w.Fund(t.Context(), "")
		require.NoError(t, err)
		require.Equal(t, "0xfaucet", hash)

		hash, err = w.Mint(t.Context(), "usdc", decimal.RequireFromString("10"))
		require.NoError(t, err)
		require.Equal(t, "0xmint", hash)

		hash, err = w.Swap(t.Context(), "0xspender", "usdc", "weth", decimal.RequireFromString("1.5"))
		require.NoError(t, err)
		require.Equal(t, "0xswap", hash)

		hash, err = w.Stake(t.Context(), "usdc", "aave", "0xspender", decimal.RequireFromString("2"))
		require.NoError(t, err)
		require.Equal(t, "0xstake", hash)

		balance, err := w.Balance(t.Context(), "usdc")
		require.NoError(t, err)
		require.True(t, balance.Equal(decimal.RequireFromString("12.5")))

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, got, 4)
		require.Equal(t, map[string]string{}, got[0])
		require.Equal(t, map[string]string{"asset_id": "usdc", "amount": "10"}, got[1])
		require.Equal(t, "weth", got[2]["to_asset_id"])
		require.Equal(t, "1.5", got[2]["amount"])
		require.Equal(t, "aave", got[3]["protocol"])
	})

	t.Run("APIError", func(t *testing.T) {
		p, platform := newTestCDP(t, map[string]func(http.ResponseWriter, map[string]string){
			"POST /v1/networks/base-sepolia/wallets": func(w http.ResponseWriter, _ map[string]string) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"code":"invalid_request","message":"network not supported"}`)
			},
		})

		for i := 0; i < 30; i++ {
			_, err := p.CreateWallet(t.Context(), "base-sepolia")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, http.StatusBadRequest, apiErr.Status)
			require.Equal(t, "network not supported", apiErr.Message)
		}
		// client errors never open the breaker
		require.EqualValues(t, 30, atomic.LoadInt32(&platform.calls))
	})

	t.Run("ServerErrorOpensBreaker", func(t *testing.T) {
		p, platform := newTestCDP(t, map[string]func(http.ResponseWriter, map[string]string){
			"POST /v1/networks/base-sepolia/wallets": func(w http.ResponseWriter, _ map[string]string) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		})

		for i := 0; i < 30; i++ {
			_, err := p.CreateWallet(t.Context(), "base-sepolia")
			require.Error(t, err)
		}
		require.Less(t, atomic.LoadInt32(&platform.calls), int32(30))
	})

	t.Run("MissingTransactionHash", func(t *testing.T) {
		p, _ := newTestCDP(t, map[string]func(http.ResponseWriter, map[string]string){
			"POST /v1/wallets/w-1/faucet": func(w http.ResponseWriter, _ map[string]string) {
				fmt.Fprint(w, `{}`)
			},
		})
		w, err := p.Rehydrate(t.Context(), json.RawMessage(`{"wallet_id":"w-1","default_address":"0xabc"}`))
		require.NoError(t, err)

		_, err = w.Fund(t.Context(), "eth")
		require.Error(t, err)
	})

	t.Run("InvalidCredential", func(t *testing.T) {
		p, _ := newTestCDP(t, nil)

		_, err := p.Rehydrate(t.Context(), json.RawMessage(`{"network_id":"base-sepolia"}`))
		require.Error(t, err)

		_, err = p.Rehydrate(t.Context(), json.RawMessage(`not json`))
		require.Error(t, err)
	})
}

func TestNewCDPProvider(t *testing.T) {
	_, pemKey := newTestKey(t)

	t.Run("EscapedNewlines", func(t *testing.T) {
		escaped := strings.ReplaceAll(pemKey, "\n", `\n`)
		p, err := NewCDPProvider(Config{APIKeyName: testKeyName, APIKeyPrivateKey: escaped})
		require.NoError(t, err)

		base, _ := url.Parse(DefaultCDPBaseURL)
		require.Equal(t, base.Host, p.baseURL.Host)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := NewCDPProvider(Config{APIKeyPrivateKey: pemKey})
		require.Error(t, err)

		_, err = NewCDPProvider(Config{APIKeyName: testKeyName})
		require.Error(t, err)

		_, err = NewCDPProvider(Config{APIKeyName: testKeyName, APIKeyPrivateKey: "not a pem"})
		require.Error(t, err)

		_, err = NewCDPProvider(Config{APIKeyName: testKeyName, APIKeyPrivateKey: pemKey, BaseURL: "::"})
		require.Error(t, err)
	})
}
