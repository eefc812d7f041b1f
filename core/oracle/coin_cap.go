package oracle

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/network"
)

type CoinCapProvider struct {
	providerCfg config.PriceProvider
	networkHttp network.Http
}

func NewCoinCapProvider(networkHttp network.Http, providerCfg config.PriceProvider) Provider {
	return &CoinCapProvider{
		networkHttp: networkHttp,
		providerCfg: providerCfg,
	}
}

func (p *CoinCapProvider) GetPrice(token config.Token) (*big.Float, error) {
	if token.CoincapName == "" {
		return nil, fmt.Errorf("no coincap id configured for token %s", token.Symbol)
	}

	url := fmt.Sprintf("%s/%s", p.providerCfg.Url, token.CoincapName)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	secret := randomSecret(p.providerCfg.Secrets)
	if secret == "" {
		return nil, fmt.Errorf("coincap requires an API key")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", secret))

	data, err := p.networkHttp.Get(req)
	if err != nil {
		return nil, err
	}

	type response struct {
		Data struct {
			RateUsd string `json:"rateUsd"`
		} `json:"data"`
	}

	resp := &response{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, err
	}

	price, ok := new(big.Float).SetString(resp.Data.RateUsd)
	if !ok {
		return nil, fmt.Errorf("unparseable rate %q for token %s", resp.Data.RateUsd, token.Symbol)
	}

	return price, nil
}
