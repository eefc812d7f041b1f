package eth

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/Technova-K02/eth-monitor/chains"
	chainstypes "github.com/Technova-K02/eth-monitor/chains/types"
	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/types"
)

// Watcher is the per-chain watch unit for EVM chains. It owns all lifecycle
// and dedup state for its chain; events from the failover coordinator are
// processed strictly one at a time in arrival order, so the block-number
// cursor and the tracker are mutated without locks.
type Watcher struct {
	cfg         config.Chain
	matcher     *transferMatcher
	tracker     *chainstypes.TxTracker
	metadata    *tokenMetadataStore
	coordinator *failoverCoordinator

	eventCh     chan *providerEvent
	transfersCh chan *types.TransferEvent
	clock       chains.Clock

	// Indirection over the coordinator's active client so tests can inject a
	// mock without running a transport.
	clientFn func() EthClient

	// Configured token contracts whose metadata is warmed once a client is
	// connected.
	staticTokens []string

	lastBlock       int64
	blocksProcessed *atomic.Int64
	running         *atomic.Bool
	cancel          context.CancelFunc
}

func NewWatcher(cfg config.Chain, tokens map[string]config.Token,
	transfersCh chan *types.TransferEvent, clock chains.Clock) chains.Watcher {
	eventCh := make(chan *providerEvent, 256)
	coordinator := newFailoverCoordinator(cfg, DialEthClient, clock, eventCh)

	staticTokens := make([]string, 0, len(tokens))
	for addr := range tokens {
		if addr != types.NativeAsset {
			staticTokens = append(staticTokens, addr)
		}
	}

	w := &Watcher{
		cfg:             cfg,
		matcher:         newTransferMatcher(cfg.Chain, cfg.WatchAddrs),
		tracker:         chainstypes.NewTxTracker(cfg.DedupCapacity, time.Duration(cfg.PendingTimeout)*time.Millisecond),
		metadata:        newTokenMetadataStore(cfg.Chain, tokens),
		coordinator:     coordinator,
		staticTokens:    staticTokens,
		eventCh:         eventCh,
		transfersCh:     transfersCh,
		clock:           clock,
		clientFn:        coordinator.client,
		blocksProcessed: atomic.NewInt64(0),
		running:         atomic.NewBool(false),
	}

	return w
}

func (w *Watcher) Start() {
	if !w.running.CAS(false, true) {
		return
	}

	log.Infof("%s: starting watcher, %d watch addresses, %d endpoints",
		w.cfg.Chain, len(w.cfg.WatchAddrs), len(w.cfg.Endpoints))

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.coordinator.run(ctx)
	go w.loop(ctx)
}

func (w *Watcher) Stop() {
	if w.running.CAS(true, false) && w.cancel != nil {
		w.cancel()
	}
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-w.eventCh:
			switch ev.kind {
			case eventNewBlock:
				w.processBlock(ctx, ev.block)
			case eventPendingTx:
				w.processPendingTx(ctx, ev.txHash)
			}
		}
	}
}

func (w *Watcher) processBlock(ctx context.Context, block *ethtypes.Block) {
	number := block.Number().Int64()
	if w.lastBlock != 0 && number <= w.lastBlock {
		log.Debugf("%s: ignoring stale block %d, last processed %d", w.cfg.Chain, number, w.lastBlock)
		return
	}
	w.lastBlock = number

	if w.cfg.Tokens && len(w.staticTokens) > 0 && w.blocksProcessed.Load() == 0 {
		// First block means a client is connected, warm the metadata cache.
		go w.metadata.prefetch(ctx, w.clientFn(), w.staticTokens)
	}

	if expired := w.tracker.Sweep(); len(expired) > 0 {
		log.Infof("%s: %d pending transactions expired unconfirmed", w.cfg.Chain, len(expired))
	}

	log.Debugf("%s: block %d, %d transactions", w.cfg.Chain, number, len(block.Transactions()))

	for _, tx := range block.Transactions() {
		w.processTx(ctx, tx, number)
	}

	w.blocksProcessed.Inc()
}

func (w *Watcher) processTx(ctx context.Context, tx *ethtypes.Transaction, blockNumber int64) {
	if ev, ok := w.matcher.matchNative(tx); ok {
		if w.tracker.MarkConfirmed(ev.Hash) {
			ev.Status = types.StatusConfirmed
			ev.BlockNumber = blockNumber
			w.deliver(ctx, ev)
		}
		return
	}

	if !w.cfg.Tokens {
		return
	}

	receipt, err := w.getReceipt(ctx, tx.Hash())
	if err != nil {
		// Abandon this fetch for the cycle, the rest of the block continues.
		log.Debugf("%s: cannot get receipt for tx %s: %v", w.cfg.Chain, tx.Hash().String(), err)
		return
	}
	if receipt == nil || receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return
	}

	ev, ok := w.matcher.matchToken(tx.Hash().String(), receipt.Logs)
	if !ok {
		return
	}

	if w.tracker.MarkConfirmed(ev.Hash) {
		ev.Status = types.StatusConfirmed
		ev.BlockNumber = blockNumber
		ev.Token = w.metadata.resolve(ctx, w.clientFn(), ev.Asset)
		w.deliver(ctx, ev)
	}
}

func (w *Watcher) processPendingTx(ctx context.Context, hash common.Hash) {
	client := w.clientFn()
	if client == nil {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	tx, isPending, err := client.TransactionByHash(fetchCtx, hash)
	cancel()
	if err != nil || tx == nil {
		return
	}
	if !isPending {
		// Already mined, the block path will report it.
		return
	}

	ev, ok := w.matcher.matchNative(tx)
	if !ok {
		return
	}

	if w.tracker.MarkPending(ev.Hash) {
		ev.Status = types.StatusPending
		w.deliver(ctx, ev)
	}
}

func (w *Watcher) deliver(ctx context.Context, ev *types.TransferEvent) {
	select {
	case <-ctx.Done():
	case w.transfersCh <- ev:
	}
}

func (w *Watcher) getReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	client := w.clientFn()
	if client == nil {
		return nil, NewNoActiveClientErr(w.cfg.Chain)
	}

	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	return client.TransactionReceipt(ctx, txHash)
}
