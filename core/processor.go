package core

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/Technova-K02/eth-monitor/chains"
	"github.com/Technova-K02/eth-monitor/chains/eth"
	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/core/oracle"
	"github.com/Technova-K02/eth-monitor/notify"
	"github.com/Technova-K02/eth-monitor/types"
	"github.com/Technova-K02/eth-monitor/utils"
)

const (
	pendingColor   = 0xF1C40F
	confirmedColor = 0x2ECC71
)

type watcherFactory func(cfg config.Chain, tokens map[string]config.Token,
	transfersCh chan *types.TransferEvent, clock chains.Clock) chains.Watcher

// Processor composes one watcher per configured chain and turns their transfer
// events into notifications. Price enrichment is best effort; a transfer is
// reported even when no USD quote can be resolved.
type Processor struct {
	cfg         config.Monitor
	transfersCh chan *types.TransferEvent
	watchers    map[string]chains.Watcher
	tpm         oracle.TokenPriceManager
	notifier    notify.Notifier

	newWatcher watcherFactory
	running    *atomic.Bool
	cancel     context.CancelFunc
}

func NewProcessor(cfg config.Monitor, tpm oracle.TokenPriceManager, notifier notify.Notifier) *Processor {
	return &Processor{
		cfg:        cfg,
		watchers:   make(map[string]chains.Watcher),
		tpm:        tpm,
		notifier:   notifier,
		newWatcher: eth.NewWatcher,
		running:    atomic.NewBool(false),
	}
}

func (p *Processor) Start() {
	if !p.running.CAS(false, true) {
		return
	}

	log.Infof("Starting transfer processor, %d chains", len(p.cfg.Chains))

	p.transfersCh = make(chan *types.TransferEvent, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	go p.listen(ctx)

	for name, chainCfg := range p.cfg.Chains {
		watcher := p.newWatcher(chainCfg, p.cfg.Tokens, p.transfersCh, chains.NewRealClock())
		p.watchers[name] = watcher
		watcher.Start()
	}
}

func (p *Processor) Stop() {
	if !p.running.CAS(true, false) {
		return
	}

	for _, watcher := range p.watchers {
		watcher.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Processor) GetWatcher(chain string) chains.Watcher {
	return p.watchers[chain]
}

func (p *Processor) listen(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-p.transfersCh:
			p.handleTransfer(ev)
		}
	}
}

func (p *Processor) handleTransfer(ev *types.TransferEvent) {
	notification := p.buildNotification(ev)

	if err := p.notifier.Notify(notification); err != nil {
		// Best effort only. The transfer is already marked processed, a failed
		// send is not retried.
		log.Errorf("%s: failed to deliver notification for tx %s: %v", ev.Chain, ev.Hash, err)
		return
	}

	log.Debugf("%s: notified %s %s transfer, tx %s", ev.Chain, ev.Status, ev.Direction, ev.Hash)
}

func (p *Processor) buildNotification(ev *types.TransferEvent) *types.Notification {
	symbol, decimals := p.assetDisplay(ev)
	amount := utils.FormatUnits(ev.Amount, decimals)

	direction := "Incoming"
	if ev.Direction == types.DirectionOutgoing {
		direction = "Outgoing"
	}

	color := pendingColor
	if ev.Status == types.StatusConfirmed {
		color = confirmedColor
	}

	fields := []types.NotificationField{
		{Name: "Amount", Value: fmt.Sprintf("%s %s", amount, symbol), Inline: true},
	}
	if usd, ok := p.usdValue(ev, decimals); ok {
		fields = append(fields, types.NotificationField{Name: "Value", Value: usd, Inline: true})
	}
	fields = append(fields,
		types.NotificationField{Name: "From", Value: utils.ShortenHex(ev.From), Inline: true},
		types.NotificationField{Name: "To", Value: utils.ShortenHex(ev.To), Inline: true},
		types.NotificationField{Name: "Chain", Value: ev.Chain, Inline: true},
	)
	if ev.Status == types.StatusConfirmed {
		fields = append(fields, types.NotificationField{
			Name:   "Block",
			Value:  fmt.Sprintf("%d", ev.BlockNumber),
			Inline: true,
		})
	}

	return &types.Notification{
		Id:        uuid.NewString(),
		Title:     fmt.Sprintf("%s %s transfer %s", direction, symbol, ev.Status),
		Fields:    fields,
		Color:     color,
		Timestamp: time.Now(),
		Link:      p.explorerLink(ev),
	}
}

// assetDisplay resolves the symbol and decimals used to render the amount.
// The base coin uses the "native" entry of the token table when present.
func (p *Processor) assetDisplay(ev *types.TransferEvent) (string, int) {
	if ev.Token != nil {
		return ev.Token.Symbol, ev.Token.Decimals
	}

	if token, ok := p.cfg.Tokens[types.NativeAsset]; ok {
		return token.Symbol, 18
	}

	return "ETH", 18
}

func (p *Processor) usdValue(ev *types.TransferEvent, decimals int) (string, bool) {
	price, err := p.tpm.GetPrice(ev.Asset)
	if err != nil {
		log.Debugf("%s: no price for asset %s: %v", ev.Chain, ev.Asset, err)
		return "", false
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value := new(big.Float).SetInt(ev.Amount)
	value.Quo(value, new(big.Float).SetInt(scale))
	value.Mul(value, price)

	return fmt.Sprintf("$%s", value.Text('f', 2)), true
}

func (p *Processor) explorerLink(ev *types.TransferEvent) string {
	chainCfg, ok := p.cfg.Chains[ev.Chain]
	if !ok || chainCfg.ExplorerUrl == "" {
		return ""
	}

	return fmt.Sprintf("%s/tx/%s", chainCfg.ExplorerUrl, ev.Hash)
}
