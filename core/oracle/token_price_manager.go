package oracle

import (
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/network"
)

const (
	UpdateFrequency = 1000 * 60 * 60 // 1 hour
)

type priceCache struct {
	id         string
	price      *big.Float
	updateTime int64
}

// TokenPriceManager resolves the USD price for an asset id. Ids are the same
// strings transfer events carry: "native" for the base coin or a lowercase
// token contract address.
type TokenPriceManager interface {
	GetPrice(id string) (*big.Float, error)
}

type defaultTokenPriceManager struct {
	networkHttp     network.Http
	cache           *sync.Map
	updateFrequency int64
	providers       map[string]Provider
	tokens          map[string]config.Token
}

func NewTokenPriceManager(providerCfgs map[string]config.PriceProvider,
	tokens map[string]config.Token, networkHttp network.Http) TokenPriceManager {

	providers := make(map[string]Provider)
	for name, providerCfg := range providerCfgs {
		switch name {
		case "coin_cap":
			providers[name] = NewCoinCapProvider(networkHttp, providerCfg)

		case "coin_market_cap":
			providers[name] = NewCoinMarketCap(networkHttp, providerCfg)

		case "coingecko":
			providers[name] = NewCoingeckoProvider(networkHttp, providerCfg)

		default:
			log.Errorf("Unknown price provider %s", name)
		}
	}

	return &defaultTokenPriceManager{
		networkHttp:     networkHttp,
		cache:           &sync.Map{},
		updateFrequency: UpdateFrequency,
		tokens:          tokens,
		providers:       providers,
	}
}

// getTokenPrice queries every configured provider concurrently and returns the
// median of the answers. A single provider outage or outlier does not poison
// the result.
func (m *defaultTokenPriceManager) getTokenPrice(id string) (*big.Float, error) {
	token, ok := m.tokens[id]
	if !ok {
		return nil, fmt.Errorf("token %s not supported", id)
	}

	if price, ok := staticPrice(token.Symbol); ok {
		return price, nil
	}

	priceMap := &sync.Map{}
	wg := &sync.WaitGroup{}
	for name, provider := range m.providers {
		wg.Add(1)
		go func(name string, provider Provider) {
			defer wg.Done()

			price, err := provider.GetPrice(token)
			if err != nil {
				log.Errorf("Failed to get token price from provider %s, err = %s", name, err)
				return
			}

			priceMap.Store(name, price)
		}(name, provider)
	}
	wg.Wait()

	prices := make([]*big.Float, 0)
	priceMap.Range(func(key, value interface{}) bool {
		prices = append(prices, value.(*big.Float))

		return true
	})

	if len(prices) == 0 {
		return nil, fmt.Errorf("cannot find price from any provider for token %s", id)
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Cmp(prices[j]) < 0
	})

	return prices[len(prices)/2], nil
}

func (m *defaultTokenPriceManager) GetPrice(id string) (*big.Float, error) {
	value, ok := m.cache.Load(id)
	if ok {
		now := time.Now()
		cache, ok := value.(*priceCache)
		if ok {
			if cache.updateTime+m.updateFrequency > now.UnixMilli() {
				return cache.price, nil
			}
		}
	}

	price, err := m.getTokenPrice(id)

	if err == nil {
		m.cache.Store(id, &priceCache{
			id:         id,
			price:      price,
			updateTime: time.Now().UnixMilli(),
		})
	}

	return price, err
}
