package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		"1":           "1",
		" 0.5 ":       "0.5",
		"10.000001":   "10.000001",
		"123456789.1": "123456789.1",
	}
	for in, want := range valid {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got.String(), in)
	}

	for _, in := range []string{"", "   ", "abc", "0", "0.0", "-1", "1.2.3"} {
		_, err := ParseAmount(in)
		require.Error(t, err, in)
	}
}

func TestBaseUnitConversion(t *testing.T) {
	require.Equal(t, "0.024981836", LamportsToSOL(24981836).String())
	require.Equal(t, "1", LamportsToSOL(1_000_000_000).String())
	require.Equal(t, "0", LamportsToSOL(0).String())
	require.Equal(t, "12.5", MicroToUSDC(12_500_000).String())

	lamports, err := SOLToLamports(decimal.RequireFromString("0.024981836"))
	require.NoError(t, err)
	require.Equal(t, uint64(24981836), lamports)

	// extra precision is truncated, not rounded
	lamports, err = SOLToLamports(decimal.RequireFromString("1.0000000019"))
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_001), lamports)

	_, err = SOLToLamports(decimal.RequireFromString("-1"))
	require.Error(t, err)

	_, err = SOLToLamports(decimal.RequireFromString("100000000000000000000"))
	require.Error(t, err)
}

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress("base-sepolia", "0x0000000000000000000000000000000000000001"))
	require.Error(t, ValidateAddress("base-sepolia", "0xABC"))
	require.Error(t, ValidateAddress("base-sepolia", "0000000000000000000000000000000000000001"))

	require.NoError(t, ValidateAddress("solana-devnet", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	require.Error(t, ValidateAddress("solana-devnet", "0x0000000000000000000000000000000000000001"))

	require.True(t, IsSolanaNetwork("Solana-Devnet"))
	require.False(t, IsSolanaNetwork("base-sepolia"))
}
