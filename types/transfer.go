package types

import "math/big"

// Asset id used for the chain's base coin. Token transfers carry the token's
// contract address instead.
const NativeAsset = "native"

type TransferStatus string

const (
	StatusPending   TransferStatus = "pending"
	StatusConfirmed TransferStatus = "confirmed"
)

type TransferDirection string

const (
	DirectionIncoming TransferDirection = "incoming"
	DirectionOutgoing TransferDirection = "outgoing"
)

// A data model that represents a single value movement touching a watched
// address. One transfer produces at most one pending and one confirmed event.
type TransferEvent struct {
	Chain     string
	Hash      string
	From      string
	To        string
	Asset     string
	Amount    *big.Int
	Direction TransferDirection
	Status    TransferStatus

	// Set only when the transfer was seen inside a retrieved block.
	BlockNumber int64

	// Set only for token transfers.
	Token *TokenInfo
}

// TokenInfo holds display metadata for a token contract.
type TokenInfo struct {
	Address  string
	Symbol   string
	Name     string
	Decimals int
}
