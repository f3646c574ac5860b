package common

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// IsSolanaNetwork reports whether networkID names a Solana cluster ("solana-devnet", ...)
func IsSolanaNetwork(networkID string) bool {
	return strings.HasPrefix(strings.ToLower(networkID), "solana")
}

// ValidateAddress checks that address is a well-formed account address for
// networkID: base58 public key on Solana networks, 0x-prefixed hex otherwise.
func ValidateAddress(networkID, address string) error {
	if IsSolanaNetwork(networkID) {
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("invalid Solana address: %w", err)
		}
		return nil
	}

	if !common.IsHexAddress(address) || !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("invalid EVM address %q", address)
	}
	return nil
}
