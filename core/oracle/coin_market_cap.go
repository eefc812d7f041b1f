package oracle

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/network"
)

type CoinMarketCap struct {
	providerCfg config.PriceProvider
	networkHttp network.Http
}

func NewCoinMarketCap(networkHttp network.Http, providerCfg config.PriceProvider) Provider {
	return &CoinMarketCap{
		networkHttp: networkHttp,
		providerCfg: providerCfg,
	}
}

func (p *CoinMarketCap) GetPrice(token config.Token) (*big.Float, error) {
	req, err := http.NewRequest("GET", p.providerCfg.Url, nil)
	if err != nil {
		return nil, err
	}

	secret := randomSecret(p.providerCfg.Secrets)
	if secret == "" {
		return nil, fmt.Errorf("coinmarketcap requires an API key")
	}
	req.Header.Add("X-CMC_PRO_API_KEY", secret)

	q := req.URL.Query()
	q.Add("symbol", token.Symbol)
	req.URL.RawQuery = q.Encode()

	data, err := p.networkHttp.Get(req)
	if err != nil {
		return nil, err
	}

	type response struct {
		Data map[string]struct {
			Quote struct {
				Usd struct {
					Value float64 `json:"price"`
				} `json:"USD"`
			} `json:"quote"`
		} `json:"data"`
	}

	resp := &response{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, err
	}

	quote, ok := resp.Data[token.Symbol]
	if !ok {
		return nil, fmt.Errorf("token %s not in the response %s", token.Symbol, string(data))
	}

	return big.NewFloat(quote.Quote.Usd.Value), nil
}
