package core

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/core/oracle"
	"github.com/Technova-K02/eth-monitor/notify"
	"github.com/Technova-K02/eth-monitor/types"
)

func newTestProcessor(tpm oracle.TokenPriceManager, notifier notify.Notifier) *Processor {
	cfg := config.Monitor{
		Chains: map[string]config.Chain{
			"eth": {Chain: "eth", ExplorerUrl: "https://etherscan.io"},
		},
		Tokens: map[string]config.Token{
			"native": {Address: "native", Symbol: "ETH", CoingeckoName: "ethereum"},
		},
	}

	return NewProcessor(cfg, tpm, notifier)
}

func nativeTransfer(status types.TransferStatus) *types.TransferEvent {
	return &types.TransferEvent{
		Chain:       "eth",
		Hash:        "0xabc",
		From:        "0x1111111111111111111111111111111111111111",
		To:          "0x2222222222222222222222222222222222222222",
		Asset:       types.NativeAsset,
		Amount:      big.NewInt(1_500_000_000_000_000_000), // 1.5 ETH
		Direction:   types.DirectionIncoming,
		Status:      status,
		BlockNumber: 100,
	}
}

func fieldValue(n *types.Notification, name string) (string, bool) {
	for _, field := range n.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

func TestProcessor_NativeTransferNotification(t *testing.T) {
	tpm := &oracle.MockTokenPriceManager{
		GetPriceFunc: func(id string) (*big.Float, error) {
			require.Equal(t, types.NativeAsset, id)
			return big.NewFloat(2000), nil
		},
	}

	var got *types.Notification
	notifier := &notify.MockNotifier{
		NotifyFunc: func(n *types.Notification) error {
			got = n
			return nil
		},
	}

	processor := newTestProcessor(tpm, notifier)
	processor.handleTransfer(nativeTransfer(types.StatusConfirmed))

	require.NotNil(t, got)
	require.Equal(t, "Incoming ETH transfer confirmed", got.Title)
	require.Equal(t, confirmedColor, got.Color)
	require.Equal(t, "https://etherscan.io/tx/0xabc", got.Link)
	require.NotEmpty(t, got.Id)

	amount, ok := fieldValue(got, "Amount")
	require.True(t, ok)
	require.Equal(t, "1.5 ETH", amount)

	value, ok := fieldValue(got, "Value")
	require.True(t, ok)
	require.Equal(t, "$3000.00", value)

	block, ok := fieldValue(got, "Block")
	require.True(t, ok)
	require.Equal(t, "100", block)
}

func TestProcessor_PendingNotificationHasNoBlock(t *testing.T) {
	var got *types.Notification
	notifier := &notify.MockNotifier{
		NotifyFunc: func(n *types.Notification) error {
			got = n
			return nil
		},
	}

	processor := newTestProcessor(&oracle.MockTokenPriceManager{
		GetPriceFunc: func(id string) (*big.Float, error) {
			return nil, fmt.Errorf("no providers")
		},
	}, notifier)

	ev := nativeTransfer(types.StatusPending)
	ev.BlockNumber = 0
	processor.handleTransfer(ev)

	require.NotNil(t, got)
	require.Equal(t, pendingColor, got.Color)

	_, ok := fieldValue(got, "Block")
	require.False(t, ok)
}

func TestProcessor_PriceFailureOmitsValueField(t *testing.T) {
	tpm := &oracle.MockTokenPriceManager{
		GetPriceFunc: func(id string) (*big.Float, error) {
			return nil, fmt.Errorf("no providers")
		},
	}

	var got *types.Notification
	notifier := &notify.MockNotifier{
		NotifyFunc: func(n *types.Notification) error {
			got = n
			return nil
		},
	}

	processor := newTestProcessor(tpm, notifier)
	processor.handleTransfer(nativeTransfer(types.StatusConfirmed))

	require.NotNil(t, got)
	_, ok := fieldValue(got, "Value")
	require.False(t, ok)
}

func TestProcessor_NotifyFailureIsNotRetried(t *testing.T) {
	calls := 0
	notifier := &notify.MockNotifier{
		NotifyFunc: func(n *types.Notification) error {
			calls++
			return fmt.Errorf("webhook down")
		},
	}

	processor := newTestProcessor(&oracle.MockTokenPriceManager{
		GetPriceFunc: func(id string) (*big.Float, error) {
			return big.NewFloat(2000), nil
		},
	}, notifier)

	processor.handleTransfer(nativeTransfer(types.StatusConfirmed))
	require.Equal(t, 1, calls)
}

func TestProcessor_TokenTransferUsesTokenMetadata(t *testing.T) {
	tokenAddr := "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

	tpm := &oracle.MockTokenPriceManager{
		GetPriceFunc: func(id string) (*big.Float, error) {
			require.Equal(t, tokenAddr, id)
			return big.NewFloat(1), nil
		},
	}

	var got *types.Notification
	notifier := &notify.MockNotifier{
		NotifyFunc: func(n *types.Notification) error {
			got = n
			return nil
		},
	}

	processor := newTestProcessor(tpm, notifier)
	processor.handleTransfer(&types.TransferEvent{
		Chain:       "eth",
		Hash:        "0xdef",
		From:        "0x1111111111111111111111111111111111111111",
		To:          "0x2222222222222222222222222222222222222222",
		Asset:       tokenAddr,
		Amount:      big.NewInt(25_000_000), // 25 USDC
		Direction:   types.DirectionOutgoing,
		Status:      types.StatusConfirmed,
		BlockNumber: 100,
		Token:       &types.TokenInfo{Address: tokenAddr, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	})

	require.NotNil(t, got)
	require.Equal(t, "Outgoing USDC transfer confirmed", got.Title)

	amount, ok := fieldValue(got, "Amount")
	require.True(t, ok)
	require.Equal(t, "25 USDC", amount)

	value, ok := fieldValue(got, "Value")
	require.True(t, ok)
	require.Equal(t, "$25.00", value)
}
