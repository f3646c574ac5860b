package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SOLDecimals  = 9 // SOL has 9 decimals (lamports)
	USDCDecimals = 6 // USDC has 6 decimals (micro)
)

// ParseAmount parses a user-supplied decimal amount.
// The amount must be a plain positive decimal string ("0.5", "10").
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", s)
	}
	return amount, nil
}

// LamportsToSOL converts lamports to SOL without float precision loss
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return fromBaseUnits(lamports, SOLDecimals)
}

// MicroToUSDC converts micro units to USDC without float precision loss
func MicroToUSDC(micro uint64) decimal.Decimal {
	return fromBaseUnits(micro, USDCDecimals)
}

// SOLToLamports converts a SOL amount to lamports, truncating extra decimals
func SOLToLamports(sol decimal.Decimal) (uint64, error) {
	return toBaseUnits(sol, SOLDecimals)
}

// fromBaseUnits shifts an integer amount by decimals
// Example: fromBaseUnits(24981836, 9) = 0.024981836
func fromBaseUnits(value uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), -decimals)
}

// toBaseUnits is the inverse of fromBaseUnits
// Example: toBaseUnits(0.024981836, 9) = 24981836
func toBaseUnits(amount decimal.Decimal, decimals int32) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}
	units := amount.Shift(decimals).Truncate(0).BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows base units", amount)
	}
	return units.Uint64(), nil
}
