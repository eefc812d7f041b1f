package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatUnits renders an amount in a token's smallest unit as a decimal string
// using the given number of decimals, trimming trailing zeros.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	if decimals <= 0 {
		return amount.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(amount, divisor, new(big.Int))

	if frac.Sign() == 0 {
		return whole.String()
	}

	fracStr := fmt.Sprintf("%0*s", decimals, frac.String())
	fracStr = strings.TrimRight(fracStr, "0")

	return whole.String() + "." + fracStr
}

// ShortenHex compresses a long hex string (address or hash) for display,
// e.g. 0x1234...abcd.
func ShortenHex(s string) string {
	if len(s) <= 12 {
		return s
	}

	return s[:6] + "..." + s[len(s)-4:]
}
