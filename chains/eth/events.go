package eth

import (
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

type eventKind int

const (
	eventNewBlock eventKind = iota
	eventPendingTx
)

// providerEvent is one normalized item from the active transport session,
// tagged with the provider that produced it.
type providerEvent struct {
	kind     eventKind
	block    *ethtypes.Block
	txHash   common.Hash
	provider string
}
