package oracle

import (
	"math/big"
	"math/rand"
	"strings"

	"github.com/Technova-K02/eth-monitor/config"
)

// Provider is a single upstream price source. GetPrice returns the token's
// spot price in USD.
type Provider interface {
	GetPrice(token config.Token) (*big.Float, error)
}

// Providers with several configured API keys pick one at random per request to
// spread rate limits.
func randomSecret(secrets string) string {
	parts := strings.Split(secrets, ",")
	if len(parts) == 0 {
		return ""
	}

	return parts[rand.Intn(len(parts))]
}
