package eth

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/groupcache/lru"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/types"
	"github.com/Technova-K02/eth-monitor/utils"
)

const metadataCacheSize = 256

// ERC-20 read selectors.
var (
	symbolSelector   = common.Hex2Bytes("95d89b41")
	nameSelector     = common.Hex2Bytes("06fdde03")
	decimalsSelector = common.Hex2Bytes("313ce567")
)

var stringArgs = abi.Arguments{{Type: mustNewType("string")}}

func mustNewType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}

	return ty
}

// tokenMetadataStore resolves display metadata for token contracts: static
// config table first, then a live read-only contract call. Results are cached
// for the process lifetime.
type tokenMetadataStore struct {
	chain  string
	static map[string]config.Token
	cache  *lru.Cache
	lock   *sync.Mutex
}

func newTokenMetadataStore(chain string, static map[string]config.Token) *tokenMetadataStore {
	return &tokenMetadataStore{
		chain:  chain,
		static: static,
		cache:  lru.New(metadataCacheSize),
		lock:   &sync.Mutex{},
	}
}

// resolve never fails; on any lookup or decode problem it falls back to a
// shortened-address placeholder and 18 decimals.
func (s *tokenMetadataStore) resolve(ctx context.Context, client EthClient, addr string) *types.TokenInfo {
	addr = strings.ToLower(addr)

	s.lock.Lock()
	if cached, ok := s.cache.Get(addr); ok {
		s.lock.Unlock()
		return cached.(*types.TokenInfo)
	}
	s.lock.Unlock()

	info := s.lookup(ctx, client, addr)

	s.lock.Lock()
	s.cache.Add(addr, info)
	s.lock.Unlock()

	return info
}

// prefetch warms the cache for several contracts concurrently.
func (s *tokenMetadataStore) prefetch(ctx context.Context, client EthClient, addrs []string) {
	wg := &sync.WaitGroup{}
	for _, addr := range addrs {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			s.resolve(ctx, client, addr)
		}(addr)
	}
	wg.Wait()
}

func (s *tokenMetadataStore) lookup(ctx context.Context, client EthClient, addr string) *types.TokenInfo {
	if token, ok := s.static[addr]; ok {
		return &types.TokenInfo{
			Address:  addr,
			Symbol:   token.Symbol,
			Name:     token.Name,
			Decimals: token.Decimals,
		}
	}

	info := &types.TokenInfo{
		Address:  addr,
		Symbol:   utils.ShortenHex(addr),
		Name:     utils.ShortenHex(addr),
		Decimals: 18,
	}

	if client == nil {
		return info
	}

	if symbol, ok := s.callString(ctx, client, addr, symbolSelector); ok {
		info.Symbol = symbol
	}
	if name, ok := s.callString(ctx, client, addr, nameSelector); ok {
		info.Name = name
	}
	if decimals, ok := s.callDecimals(ctx, client, addr); ok {
		info.Decimals = decimals
	}

	return info
}

// callString reads a string-returning contract method, falling back to a
// fixed-width (bytes32) decode for non-standard tokens.
func (s *tokenMetadataStore) callString(ctx context.Context, client EthClient, addr string,
	selector []byte) (string, bool) {
	data, err := s.call(ctx, client, addr, selector)
	if err != nil || len(data) == 0 {
		return "", false
	}

	if out, err := stringArgs.Unpack(data); err == nil && len(out) == 1 {
		if str, ok := out[0].(string); ok && str != "" {
			return str, true
		}
	}

	if len(data) == 32 {
		trimmed := strings.TrimRight(string(data), "\x00")
		if trimmed != "" && utf8.ValidString(trimmed) {
			return trimmed, true
		}
	}

	return "", false
}

func (s *tokenMetadataStore) callDecimals(ctx context.Context, client EthClient, addr string) (int, bool) {
	data, err := s.call(ctx, client, addr, decimalsSelector)
	if err != nil || len(data) < 32 {
		return 0, false
	}

	value := new(big.Int).SetBytes(data[:32])
	if !value.IsInt64() || value.Int64() > 255 {
		// Anything above one byte is not a sane decimals value.
		return 0, false
	}

	return int(value.Int64()), true
}

func (s *tokenMetadataStore) call(ctx context.Context, client EthClient, addr string,
	selector []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	contract := common.HexToAddress(addr)

	return client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: selector,
	}, nil)
}
