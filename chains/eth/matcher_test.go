package eth

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/Technova-K02/eth-monitor/types"
)

var testChainId = big.NewInt(1337)

func signTx(t *testing.T, tx *ethtypes.Transaction) (*ethtypes.Transaction, common.Address) {
	t.Helper()

	privateKey, err := crypto.HexToECDSA("fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19")
	require.Nil(t, err)

	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(testChainId), privateKey)
	require.Nil(t, err)

	return signedTx, crypto.PubkeyToAddress(privateKey.PublicKey)
}

func addrTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func TestMatcher_NativeIncoming(t *testing.T) {
	watched := common.Address{1}
	matcher := newTransferMatcher("ganache1", []string{strings.ToLower(watched.Hex())})

	tx, _ := signTx(t, ethtypes.NewTransaction(0, watched, big.NewInt(10), 22000, big.NewInt(1), nil))

	ev, ok := matcher.matchNative(tx)
	require.True(t, ok)
	require.Equal(t, types.DirectionIncoming, ev.Direction)
	require.Equal(t, types.NativeAsset, ev.Asset)
	require.Equal(t, big.NewInt(10), ev.Amount)
	require.Equal(t, strings.ToLower(watched.Hex()), ev.To)
}

func TestMatcher_NativeOutgoing(t *testing.T) {
	// Sign first to learn the sender, then watch the sender only.
	tx, sender := signTx(t, ethtypes.NewTransaction(0, common.Address{9}, big.NewInt(10), 22000, big.NewInt(1), nil))
	matcher := newTransferMatcher("ganache1", []string{strings.ToLower(sender.Hex())})

	ev, ok := matcher.matchNative(tx)
	require.True(t, ok)
	require.Equal(t, types.DirectionOutgoing, ev.Direction)
	require.Equal(t, strings.ToLower(sender.Hex()), ev.From)
}

func TestMatcher_NativeSelfTransferDefaultsIncoming(t *testing.T) {
	_, sender := signTx(t, ethtypes.NewTransaction(0, common.Address{9}, big.NewInt(1), 22000, big.NewInt(1), nil))
	tx, _ := signTx(t, ethtypes.NewTransaction(0, sender, big.NewInt(10), 22000, big.NewInt(1), nil))

	matcher := newTransferMatcher("ganache1", []string{strings.ToLower(sender.Hex())})

	ev, ok := matcher.matchNative(tx)
	require.True(t, ok)
	require.Equal(t, types.DirectionIncoming, ev.Direction)
}

func TestMatcher_NativeNoMatch(t *testing.T) {
	watched := common.Address{1}
	matcher := newTransferMatcher("ganache1", []string{strings.ToLower(watched.Hex())})

	// Watched address but zero value.
	tx, _ := signTx(t, ethtypes.NewTransaction(0, watched, big.NewInt(0), 22000, big.NewInt(1), nil))
	_, ok := matcher.matchNative(tx)
	require.False(t, ok)

	// Value but no involved address.
	tx, _ = signTx(t, ethtypes.NewTransaction(0, common.Address{7}, big.NewInt(10), 22000, big.NewInt(1), nil))
	_, ok = matcher.matchNative(tx)
	require.False(t, ok)
}

func TestMatcher_TokenTransfer(t *testing.T) {
	watched := common.Address{1}
	other := common.Address{2}
	contract := common.Address{0xee}
	matcher := newTransferMatcher("ganache1", []string{strings.ToLower(watched.Hex())})

	amount := big.NewInt(1_000_000)
	logs := []*ethtypes.Log{
		{
			Address: contract,
			Topics:  []common.Hash{transferEventTopic, addrTopic(other), addrTopic(watched)},
			Data:    common.LeftPadBytes(amount.Bytes(), 32),
		},
	}

	ev, ok := matcher.matchToken("0xabc", logs)
	require.True(t, ok)
	require.Equal(t, types.DirectionIncoming, ev.Direction)
	require.Equal(t, strings.ToLower(contract.Hex()), ev.Asset)
	require.Equal(t, amount, ev.Amount)
	require.Equal(t, "0xabc", ev.Hash)
}

func TestMatcher_TokenEmptyDataIsZeroAmount(t *testing.T) {
	watched := common.Address{1}
	matcher := newTransferMatcher("ganache1", []string{strings.ToLower(watched.Hex())})

	logs := []*ethtypes.Log{
		{
			Address: common.Address{0xee},
			Topics:  []common.Hash{transferEventTopic, addrTopic(common.Address{2}), addrTopic(watched)},
		},
	}

	ev, ok := matcher.matchToken("0xabc", logs)
	require.True(t, ok)
	require.Equal(t, int64(0), ev.Amount.Int64())
}

func TestMatcher_TokenFirstMatchingLogOnly(t *testing.T) {
	watched := common.Address{1}
	matcher := newTransferMatcher("ganache1", []string{strings.ToLower(watched.Hex())})

	first := common.Address{0xaa}
	second := common.Address{0xbb}
	logs := []*ethtypes.Log{
		// Malformed: missing an indexed topic slot, skipped.
		{
			Address: common.Address{0xcc},
			Topics:  []common.Hash{transferEventTopic, addrTopic(watched)},
		},
		// Unrelated event signature, skipped.
		{
			Address: common.Address{0xdd},
			Topics:  []common.Hash{{0x01}, addrTopic(common.Address{2}), addrTopic(watched)},
		},
		{
			Address: first,
			Topics:  []common.Hash{transferEventTopic, addrTopic(common.Address{2}), addrTopic(watched)},
			Data:    common.LeftPadBytes(big.NewInt(5).Bytes(), 32),
		},
		{
			Address: second,
			Topics:  []common.Hash{transferEventTopic, addrTopic(watched), addrTopic(common.Address{2})},
			Data:    common.LeftPadBytes(big.NewInt(7).Bytes(), 32),
		},
	}

	ev, ok := matcher.matchToken("0xabc", logs)
	require.True(t, ok)
	require.Equal(t, strings.ToLower(first.Hex()), ev.Asset)
	require.Equal(t, int64(5), ev.Amount.Int64())
}

func TestMatcher_TokenNoInvolvedLeg(t *testing.T) {
	matcher := newTransferMatcher("ganache1", []string{"0x0100000000000000000000000000000000000000"})

	logs := []*ethtypes.Log{
		{
			Address: common.Address{0xee},
			Topics:  []common.Hash{transferEventTopic, addrTopic(common.Address{8}), addrTopic(common.Address{9})},
			Data:    common.LeftPadBytes(big.NewInt(5).Bytes(), 32),
		},
	}

	_, ok := matcher.matchToken("0xabc", logs)
	require.False(t, ok)
}
