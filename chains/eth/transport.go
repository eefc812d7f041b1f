package eth

import (
	"context"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"

	"github.com/Technova-K02/eth-monitor/chains"
	"github.com/Technova-K02/eth-monitor/config"
)

type emitFunc func(ev *providerEvent)

// transportSession is one connection or poll loop against one provider
// endpoint. run blocks until the session fails or ctx is canceled; any
// returned error triggers failover.
type transportSession interface {
	name() string
	run(ctx context.Context, emit emitFunc) error
}

func newTransportSession(endpoint config.Endpoint, client EthClient, cfg config.Chain,
	startHeight int64, clock chains.Clock) transportSession {
	if endpoint.Kind == config.TransportSubscription {
		return &subscriptionSession{
			endpoint: endpoint,
			client:   client,
			next:     startHeight,
		}
	}

	return &pollingSession{
		endpoint: endpoint,
		client:   client,
		interval: time.Duration(cfg.BlockTime) * time.Millisecond,
		next:     startHeight,
		clock:    clock,
	}
}

// pollingSession queries the chain height on a fixed interval equal to the
// chain's nominal block time and fetches every unprocessed block in ascending
// order. If a cycle's work exceeds the interval the next cycle starts
// immediately.
type pollingSession struct {
	endpoint config.Endpoint
	client   EthClient
	interval time.Duration
	next     int64
	clock    chains.Clock
}

func (s *pollingSession) name() string {
	return s.endpoint.Name
}

func (s *pollingSession) run(ctx context.Context, emit emitFunc) error {
	if s.next == 0 {
		if err := s.setStartHeight(ctx); err != nil {
			return err
		}
		log.Infof("%s: watching from block %d", s.endpoint.Name, s.next)
	}

	for {
		started := s.clock.Now()
		if err := s.pollOnce(ctx, emit); err != nil {
			return err
		}

		wait := s.interval - s.clock.Now().Sub(started)
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(wait):
		}
	}
}

// setStartHeight resolves the current chain head. There is no persisted
// cursor, so a fresh session with no height hint resumes from the head.
func (s *pollingSession) setStartHeight(ctx context.Context) error {
	return retry.Do(
		func() error {
			number, err := s.getBlockNumber(ctx)
			if err != nil {
				return err
			}
			s.next = int64(number)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
	)
}

func (s *pollingSession) pollOnce(ctx context.Context, emit emitFunc) error {
	number, err := s.getBlockNumber(ctx)
	if err != nil {
		return err
	}

	for s.next <= int64(number) {
		block, err := s.getBlock(ctx, s.next)
		if err == ethereum.NotFound {
			// Height reported but the block is not retrievable yet. Pick it up
			// next cycle.
			return nil
		}
		if err != nil {
			return err
		}

		emit(&providerEvent{kind: eventNewBlock, block: block})
		s.next++
	}

	return nil
}

func (s *pollingSession) getBlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	return s.client.BlockNumber(ctx)
}

func (s *pollingSession) getBlock(ctx context.Context, height int64) (*ethtypes.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	return s.client.BlockByNumber(ctx, big.NewInt(height))
}

// subscriptionSession opens a persistent connection, subscribes to new block
// headers and forwards them as full blocks. If the endpoint supports it, raw
// pending transaction hashes are surfaced as well.
type subscriptionSession struct {
	endpoint config.Endpoint
	client   EthClient
	next     int64
}

func (s *subscriptionSession) name() string {
	return s.endpoint.Name
}

func (s *subscriptionSession) run(ctx context.Context, emit emitFunc) error {
	headCh := make(chan *ethtypes.Header, 16)
	sub, err := s.client.SubscribeNewHead(ctx, headCh)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	var (
		pendingCh  chan common.Hash
		pendingErr <-chan error
	)
	if s.endpoint.PendingTxs {
		pendingCh = make(chan common.Hash, 256)
		psub, err := s.client.SubscribePendingTxs(ctx, pendingCh)
		if err != nil {
			log.Warnf("%s: pending tx stream unavailable: %v", s.endpoint.Name, err)
			pendingCh = nil
		} else {
			defer psub.Unsubscribe()
			pendingErr = psub.Err()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-sub.Err():
			return err

		case err := <-pendingErr:
			return err

		case head := <-headCh:
			if err := s.emitUpTo(ctx, head.Number.Int64(), emit); err != nil {
				return err
			}

		case hash := <-pendingCh:
			emit(&providerEvent{kind: eventPendingTx, txHash: hash})
		}
	}
}

// emitUpTo fetches every block from the session's next height up to target in
// ascending order, covering header gaps after a reconnect.
func (s *subscriptionSession) emitUpTo(ctx context.Context, target int64, emit emitFunc) error {
	if s.next == 0 || s.next > target {
		s.next = target
	}

	for ; s.next <= target; s.next++ {
		block, err := s.getBlock(ctx, s.next)
		if err != nil {
			return err
		}

		emit(&providerEvent{kind: eventNewBlock, block: block})
	}

	return nil
}

func (s *subscriptionSession) getBlock(ctx context.Context, height int64) (*ethtypes.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	return s.client.BlockByNumber(ctx, big.NewInt(height))
}
