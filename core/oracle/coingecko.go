package oracle

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/network"
)

type CoingeckoProvider struct {
	providerCfg config.PriceProvider
	networkHttp network.Http
}

func NewCoingeckoProvider(networkHttp network.Http, providerCfg config.PriceProvider) Provider {
	return &CoingeckoProvider{
		networkHttp: networkHttp,
		providerCfg: providerCfg,
	}
}

func (p *CoingeckoProvider) GetPrice(token config.Token) (*big.Float, error) {
	if token.CoingeckoName == "" {
		return nil, fmt.Errorf("no coingecko id configured for token %s", token.Symbol)
	}

	url := fmt.Sprintf("%s?ids=%s&vs_currencies=usd", p.providerCfg.Url, token.CoingeckoName)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	if secret := randomSecret(p.providerCfg.Secrets); secret != "" {
		req.Header.Set("x-cg-pro-api-key", secret)
	}

	data, err := p.networkHttp.Get(req)
	if err != nil {
		return nil, err
	}

	type entry struct {
		Usd float64 `json:"usd"`
	}

	response := map[string]entry{}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	quote, ok := response[token.CoingeckoName]
	if !ok {
		return nil, fmt.Errorf("token %s not in coingecko response", token.CoingeckoName)
	}

	return big.NewFloat(quote.Usd), nil
}
