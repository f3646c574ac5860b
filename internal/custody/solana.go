package custody

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/client"
	"github.com/AlexZinkM/yield-agent/internal/common"
	"github.com/AlexZinkM/yield-agent/internal/crypto"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	privateKeyLen = 64 // full ed25519 key (seed + public key)

	assetSOL  = "sol"
	assetUSDC = "usdc"
)

// airdropLamports is the amount requested from the cluster faucet (1 SOL)
var airdropLamports uint64 = 1_000_000_000

// solanaCredential is the credential blob of a locally generated Solana wallet
type solanaCredential struct {
	WalletID       string            `json:"wallet_id"`
	NetworkID      string            `json:"network_id"`
	DefaultAddress string            `json:"default_address"`
	CreatedAt      string            `json:"created_at"`
	SealedKey      *crypto.SealedKey `json:"sealed_key"`
}

// SolanaProvider generates keys locally, seals them with a passphrase and
// talks to a Solana RPC node for funding and balances.
type SolanaProvider struct {
	rpcURL   string
	password []byte
}

// NewSolanaProvider returns a provider sealing keys with password.
// password is copied; the caller may zero its slice afterwards.
func NewSolanaProvider(rpcURL string, password []byte) (*SolanaProvider, error) {
	if strings.TrimSpace(rpcURL) == "" {
		return nil, errors.New("solana rpc url must not be empty")
	}
	if len(password) == 0 {
		return nil, errors.New("seed passphrase must not be empty")
	}
	pw := make([]byte, len(password))
	copy(pw, password)
	return &SolanaProvider{rpcURL: rpcURL, password: pw}, nil
}

func (p *SolanaProvider) CreateWallet(ctx context.Context, networkID string) (json.RawMessage, error) {
	if !common.IsSolanaNetwork(networkID) {
		return nil, fmt.Errorf("network %q is not a Solana network", networkID)
	}

	// Generate new Solana keypair
	wallet := solana.NewWallet()
	defer clear(wallet.PrivateKey)

	sealed, err := crypto.Seal(wallet.PrivateKey, p.password)
	if err != nil {
		return nil, fmt.Errorf("failed to seal wallet key: %w", err)
	}

	return json.Marshal(solanaCredential{
		WalletID:       uuid.NewString(),
		NetworkID:      networkID,
		DefaultAddress: wallet.PublicKey().String(),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		SealedKey:      sealed,
	})
}

func (p *SolanaProvider) Rehydrate(ctx context.Context, credential json.RawMessage) (Wallet, error) {
	var cred solanaCredential
	if err := json.Unmarshal(credential, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	if cred.WalletID == "" || cred.DefaultAddress == "" {
		return nil, errors.New("credential is missing wallet_id or default_address")
	}

	// Decrypt private key only to prove the credential is ours and intact
	privateKey, err := crypto.Open(cred.SealedKey, p.password)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet key: %w", err)
	}
	defer clear(privateKey)

	if len(privateKey) != privateKeyLen {
		return nil, fmt.Errorf("invalid private key length")
	}
	fromPubkey, err := solana.PublicKeyFromBase58(cred.DefaultAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	if !solana.PrivateKey(privateKey).PublicKey().Equals(fromPubkey) {
		return nil, fmt.Errorf("private key does not match address")
	}

	usdcMint := client.USDCMintDevnet
	if strings.Contains(cred.NetworkID, "mainnet") {
		usdcMint = client.USDCMintMainnet
	}
	rpcClient, err := client.NewSolanaClient(p.rpcURL, cred.DefaultAddress, usdcMint)
	if err != nil {
		return nil, err
	}

	return &solanaWallet{cred: cred, rpc: rpcClient}, nil
}

type solanaWallet struct {
	cred solanaCredential
	rpc  *client.SolanaClient
}

func (w *solanaWallet) ID() string             { return w.cred.WalletID }
func (w *solanaWallet) NetworkID() string      { return w.cred.NetworkID }
func (w *solanaWallet) DefaultAddress() string { return w.cred.DefaultAddress }

// Fund requests a devnet airdrop of native SOL.
func (w *solanaWallet) Fund(ctx context.Context, assetID string) (string, error) {
	if assetID != "" && !strings.EqualFold(assetID, assetSOL) {
		return "", fmt.Errorf("faucet only dispenses %s: %w", assetSOL, ErrUnsupportedOperation)
	}
	return w.rpc.RequestAirdrop(ctx, airdropLamports)
}

func (w *solanaWallet) Mint(context.Context, string, decimal.Decimal) (string, error) {
	return "", ErrUnsupportedOperation
}

func (w *solanaWallet) Swap(context.Context, string, string, string, decimal.Decimal) (string, error) {
	return "", ErrUnsupportedOperation
}

func (w *solanaWallet) Stake(context.Context, string, string, string, decimal.Decimal) (string, error) {
	return "", ErrUnsupportedOperation
}

func (w *solanaWallet) Balance(ctx context.Context, assetID string) (decimal.Decimal, error) {
	switch strings.ToLower(assetID) {
	case "", assetSOL:
		lamports, err := w.rpc.GetSOLBalance(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		return common.LamportsToSOL(lamports), nil
	case assetUSDC:
		micro, err := w.rpc.GetUSDCBalance(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		return common.MicroToUSDC(micro), nil
	default:
		return decimal.Zero, fmt.Errorf("asset %q: %w", assetID, ErrUnsupportedOperation)
	}
}
