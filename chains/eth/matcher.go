package eth

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/Technova-K02/eth-monitor/types"
)

// keccak256("Transfer(address,address,uint256)")
var transferEventTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// A standard Transfer log carries the event signature plus two indexed
// address topics.
const transferLogTopics = 3

// transferMatcher classifies a transaction or receipt log as an involved
// native or token transfer against a static, case-folded watch set.
type transferMatcher struct {
	chain string
	watch map[string]bool
}

func newTransferMatcher(chain string, watchAddrs []string) *transferMatcher {
	watch := make(map[string]bool, len(watchAddrs))
	for _, addr := range watchAddrs {
		watch[strings.ToLower(addr)] = true
	}

	return &transferMatcher{
		chain: chain,
		watch: watch,
	}
}

func (m *transferMatcher) watched(addr common.Address) bool {
	return m.watch[strings.ToLower(addr.Hex())]
}

// matchNative reports whether tx moves native value to or from a watched
// address. A self-transfer between watched addresses counts as incoming.
func (m *transferMatcher) matchNative(tx *ethtypes.Transaction) (*types.TransferEvent, bool) {
	to := tx.To()
	if to == nil || tx.Value() == nil || tx.Value().Sign() <= 0 {
		return nil, false
	}

	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		// Sender recovery failed, treat as no match.
		return nil, false
	}

	direction, ok := m.direction(from, *to)
	if !ok {
		return nil, false
	}

	return &types.TransferEvent{
		Chain:     m.chain,
		Hash:      tx.Hash().String(),
		From:      strings.ToLower(from.Hex()),
		To:        strings.ToLower(to.Hex()),
		Asset:     types.NativeAsset,
		Amount:    new(big.Int).Set(tx.Value()),
		Direction: direction,
	}, true
}

// matchToken scans receipt logs for a standard token Transfer touching a
// watched address. Only the first matching log yields an event; multiple
// involved legs in one transaction produce one notification.
func (m *transferMatcher) matchToken(txHash string, logs []*ethtypes.Log) (*types.TransferEvent, bool) {
	for _, lg := range logs {
		if len(lg.Topics) != transferLogTopics || lg.Topics[0] != transferEventTopic {
			continue
		}

		from := common.BytesToAddress(lg.Topics[1].Bytes()[12:])
		to := common.BytesToAddress(lg.Topics[2].Bytes()[12:])

		direction, ok := m.direction(from, to)
		if !ok {
			continue
		}

		amount := new(big.Int)
		if len(lg.Data) > 0 {
			amount.SetBytes(lg.Data)
		}

		return &types.TransferEvent{
			Chain:     m.chain,
			Hash:      txHash,
			From:      strings.ToLower(from.Hex()),
			To:        strings.ToLower(to.Hex()),
			Asset:     strings.ToLower(lg.Address.Hex()),
			Amount:    amount,
			Direction: direction,
		}, true
	}

	return nil, false
}

func (m *transferMatcher) direction(from, to common.Address) (types.TransferDirection, bool) {
	if m.watched(to) {
		return types.DirectionIncoming, true
	}
	if m.watched(from) {
		return types.DirectionOutgoing, true
	}

	return "", false
}
