package oracle

import (
	"math/big"

	"github.com/Technova-K02/eth-monitor/config"
)

type MockProvider struct {
	GetPriceFunc func(token config.Token) (*big.Float, error)
}

func (m *MockProvider) GetPrice(token config.Token) (*big.Float, error) {
	if m.GetPriceFunc != nil {
		return m.GetPriceFunc(token)
	}

	return nil, nil
}

//////

type MockTokenPriceManager struct {
	GetPriceFunc func(id string) (*big.Float, error)
}

func (m *MockTokenPriceManager) GetPrice(id string) (*big.Float, error) {
	if m.GetPriceFunc != nil {
		return m.GetPriceFunc(id)
	}

	return nil, nil
}
