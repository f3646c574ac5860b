package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	USDCMintMainnet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v" // USDC mint address on Solana mainnet
	USDCMintDevnet  = "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU" // USDC mint address on Solana devnet
)

// SolanaClient is a client for working with Solana RPC on behalf of one address
type SolanaClient struct {
	rpcClient     *rpc.Client
	mintPublicKey solana.PublicKey
	ownerPubkey   solana.PublicKey
}

// NewSolanaClient creates a new Solana client for the given address.
func NewSolanaClient(rpcURL, address, usdcMint string) (*SolanaClient, error) {
	ownerPubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid Solana address: %w", err)
	}

	mintPubKey, err := solana.PublicKeyFromBase58(usdcMint)
	if err != nil {
		return nil, fmt.Errorf("invalid USDC mint address: %w", err)
	}

	return &SolanaClient{
		rpcClient:     rpc.New(rpcURL),
		mintPublicKey: mintPubKey,
		ownerPubkey:   ownerPubkey,
	}, nil
}

// GetSOLBalance gets SOL balance in lamports
func (c *SolanaClient) GetSOLBalance(ctx context.Context) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, c.ownerPubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// GetUSDCBalance gets USDC balance in micro units (10^-6 USDC).
// An address without a USDC token account holds zero.
func (c *SolanaClient) GetUSDCBalance(ctx context.Context) (uint64, error) {
	ataAddress, _, err := solana.FindAssociatedTokenAddress(c.ownerPubkey, c.mintPublicKey)
	if err != nil {
		return 0, fmt.Errorf("failed to find associated token account address: %w", err)
	}

	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, ataAddress, rpc.CommitmentConfirmed)
	if err != nil {
		if isATANotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get token account balance: %w", err)
	}

	if balance.Value == nil {
		return 0, nil
	}

	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse USDC balance amount: %w", err)
	}

	return amount, nil
}

// RequestAirdrop asks the cluster faucet for lamports (devnet/testnet only)
// and returns the airdrop transaction signature.
func (c *SolanaClient) RequestAirdrop(ctx context.Context, lamports uint64) (string, error) {
	sig, err := c.rpcClient.RequestAirdrop(ctx, c.ownerPubkey, lamports, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to request airdrop: %w", err)
	}
	return sig.String(), nil
}

// isATANotFoundError checks if error indicates that token account doesn't exist
func isATANotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}
