package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type TransportKind string

const (
	TransportSubscription TransportKind = "subscription"
	TransportPoll         TransportKind = "poll"
)

type EndpointRole string

const (
	RolePrimary  EndpointRole = "primary"
	RoleFallback EndpointRole = "fallback"
)

const (
	DefaultBlockTime      = 15_000   // ms
	DefaultPendingTimeout = 600_000  // ms, 10 minutes
	DefaultDedupCapacity  = 1024
)

// Endpoint is one RPC provider for a chain. Endpoints are tried in config
// order, starting with the primary.
type Endpoint struct {
	Name       string        `toml:"name" json:"name"`
	Kind       TransportKind `toml:"kind" json:"kind"`
	Url        string        `toml:"url" json:"url"`
	Role       EndpointRole  `toml:"role" json:"role"`
	PendingTxs bool          `toml:"pending_txs" json:"pending_txs"`
}

type Chain struct {
	Chain          string     `toml:"chain" json:"chain"`
	BlockTime      int        `toml:"block_time" json:"block_time"`           // ms
	PendingTimeout int        `toml:"pending_timeout" json:"pending_timeout"` // ms
	DedupCapacity  int        `toml:"dedup_capacity" json:"dedup_capacity"`
	Tokens         bool       `toml:"tokens" json:"tokens"`
	ExplorerUrl    string     `toml:"explorer_url" json:"explorer_url"`
	WatchAddrs     []string   `toml:"watch_addrs" json:"watch_addrs"`
	Endpoints      []Endpoint `toml:"endpoints" json:"endpoints"`
}

// Token is a statically configured token metadata entry. The watcher falls
// back to an on-chain lookup for contracts not listed here.
type Token struct {
	Address       string `toml:"address"`
	Symbol        string `toml:"symbol"`
	Name          string `toml:"name"`
	Decimals      int    `toml:"decimals"`
	CoingeckoName string `toml:"coingecko_name"`
	CoincapName   string `toml:"coincap_name"`
}

type PriceProvider struct {
	Url     string `toml:"url"`
	Secrets string `toml:"secrets"`
}

type Notifier struct {
	WebhookUrl string `toml:"webhook_url"`
	Username   string `toml:"username"`
}

type Monitor struct {
	LogLevel string `toml:"log_level"`

	Chains         map[string]Chain         `toml:"chains"`
	Tokens         map[string]Token         `toml:"tokens"`
	PriceProviders map[string]PriceProvider `toml:"price_providers"`
	Notifier       Notifier                 `toml:"notifier"`
}

// Load reads the TOML config at path, fills defaults and validates it. A chain
// without a single usable endpoint is a configuration error; everything else
// is recoverable at runtime.
func Load(path string) (Monitor, error) {
	cfg := Monitor{}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	for name, chain := range cfg.Chains {
		if chain.Chain == "" {
			chain.Chain = name
		}
		if chain.BlockTime <= 0 {
			chain.BlockTime = DefaultBlockTime
		}
		if chain.PendingTimeout <= 0 {
			chain.PendingTimeout = DefaultPendingTimeout
		}
		if chain.DedupCapacity <= 0 {
			chain.DedupCapacity = DefaultDedupCapacity
		}

		if len(chain.Endpoints) == 0 {
			return cfg, fmt.Errorf("chain %s has no provider endpoints", name)
		}
		for i, ep := range chain.Endpoints {
			if ep.Url == "" {
				return cfg, fmt.Errorf("chain %s endpoint %d has no url", name, i)
			}
			if ep.Kind == "" {
				chain.Endpoints[i].Kind = TransportPoll
			}
			if ep.Name == "" {
				chain.Endpoints[i].Name = fmt.Sprintf("%s-%d", name, i)
			}
			if ep.Role == "" {
				if i == 0 {
					chain.Endpoints[i].Role = RolePrimary
				} else {
					chain.Endpoints[i].Role = RoleFallback
				}
			}
		}

		for i, addr := range chain.WatchAddrs {
			chain.WatchAddrs[i] = strings.ToLower(addr)
		}

		cfg.Chains[name] = chain
	}

	// Token entries are re-keyed by lowercase contract address so the watcher
	// can look them up directly from a decoded log.
	tokens := make(map[string]Token, len(cfg.Tokens))
	for _, token := range cfg.Tokens {
		if token.Decimals == 0 {
			token.Decimals = 18
		}
		tokens[strings.ToLower(token.Address)] = token
	}
	cfg.Tokens = tokens

	return cfg, nil
}
