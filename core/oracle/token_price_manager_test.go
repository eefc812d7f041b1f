package oracle

import (
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/network"
)

func newTestManager(providers map[string]Provider, tokens map[string]config.Token) *defaultTokenPriceManager {
	return &defaultTokenPriceManager{
		networkHttp:     &network.MockHttp{},
		cache:           &sync.Map{},
		updateFrequency: UpdateFrequency,
		providers:       providers,
		tokens:          tokens,
	}
}

func fixedProvider(price float64) Provider {
	return &MockProvider{
		GetPriceFunc: func(token config.Token) (*big.Float, error) {
			return big.NewFloat(price), nil
		},
	}
}

func TestPriceManager_MedianAcrossProviders(t *testing.T) {
	tokens := map[string]config.Token{
		"native": {Address: "native", Symbol: "ETH", CoingeckoName: "ethereum"},
	}
	providers := map[string]Provider{
		"a": fixedProvider(2300),
		"b": fixedProvider(9999), // outlier
		"c": fixedProvider(2310),
	}

	manager := newTestManager(providers, tokens)

	price, err := manager.GetPrice("native")
	require.Nil(t, err)
	require.Equal(t, 0, price.Cmp(big.NewFloat(2310)))
}

func TestPriceManager_SingleProviderOutageTolerated(t *testing.T) {
	tokens := map[string]config.Token{
		"native": {Address: "native", Symbol: "ETH"},
	}
	providers := map[string]Provider{
		"up": fixedProvider(2300),
		"down": &MockProvider{
			GetPriceFunc: func(token config.Token) (*big.Float, error) {
				return nil, fmt.Errorf("rate limited")
			},
		},
	}

	manager := newTestManager(providers, tokens)

	price, err := manager.GetPrice("native")
	require.Nil(t, err)
	require.Equal(t, 0, price.Cmp(big.NewFloat(2300)))
}

func TestPriceManager_AllProvidersFailIsAnError(t *testing.T) {
	tokens := map[string]config.Token{
		"native": {Address: "native", Symbol: "ETH"},
	}
	providers := map[string]Provider{
		"down": &MockProvider{
			GetPriceFunc: func(token config.Token) (*big.Float, error) {
				return nil, fmt.Errorf("rate limited")
			},
		},
	}

	manager := newTestManager(providers, tokens)

	_, err := manager.GetPrice("native")
	require.NotNil(t, err)
}

func TestPriceManager_UnknownTokenIsAnError(t *testing.T) {
	manager := newTestManager(map[string]Provider{"a": fixedProvider(1)}, map[string]config.Token{})

	_, err := manager.GetPrice("0xdeadbeef")
	require.NotNil(t, err)
}

func TestPriceManager_CachesResult(t *testing.T) {
	calls := 0
	tokens := map[string]config.Token{
		"native": {Address: "native", Symbol: "ETH"},
	}
	providers := map[string]Provider{
		"a": &MockProvider{
			GetPriceFunc: func(token config.Token) (*big.Float, error) {
				calls++
				return big.NewFloat(2300), nil
			},
		},
	}

	manager := newTestManager(providers, tokens)

	_, err := manager.GetPrice("native")
	require.Nil(t, err)
	_, err = manager.GetPrice("native")
	require.Nil(t, err)
	require.Equal(t, 1, calls)
}

func TestPriceManager_PeggedAssetSkipsProviders(t *testing.T) {
	addr := "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	tokens := map[string]config.Token{
		addr: {Address: addr, Symbol: "USDC"},
	}
	providers := map[string]Provider{
		"down": &MockProvider{
			GetPriceFunc: func(token config.Token) (*big.Float, error) {
				t.Fatal("provider should not be queried for a pegged asset")
				return nil, nil
			},
		},
	}

	manager := newTestManager(providers, tokens)

	price, err := manager.GetPrice(addr)
	require.Nil(t, err)
	require.Equal(t, 0, price.Cmp(big.NewFloat(1)))
}

func TestCoingeckoProvider_ParsesQuote(t *testing.T) {
	mockHttp := &network.MockHttp{
		GetFunc: func(req *http.Request) ([]byte, error) {
			require.Contains(t, req.URL.String(), "ids=ethereum")
			return []byte(`{"ethereum":{"usd":2410.87}}`), nil
		},
	}

	provider := NewCoingeckoProvider(mockHttp, config.PriceProvider{Url: "http://example.com"})

	price, err := provider.GetPrice(config.Token{Symbol: "ETH", CoingeckoName: "ethereum"})
	require.Nil(t, err)
	require.Equal(t, 0, price.Cmp(big.NewFloat(2410.87)))
}

func TestCoinCapProvider_ParsesRate(t *testing.T) {
	mockHttp := &network.MockHttp{
		GetFunc: func(req *http.Request) ([]byte, error) {
			require.Equal(t, "Bearer key1", req.Header.Get("Authorization"))
			return []byte(`{"data":{"rateUsd":"2410.875945408672"}}`), nil
		},
	}

	provider := NewCoinCapProvider(mockHttp, config.PriceProvider{
		Url:     "http://example.com",
		Secrets: "key1",
	})

	price, err := provider.GetPrice(config.Token{Symbol: "ETH", CoincapName: "ethereum"})
	require.Nil(t, err)

	expected, _ := new(big.Float).SetString("2410.875945408672")
	require.Equal(t, 0, price.Cmp(expected))
}
