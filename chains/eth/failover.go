package eth

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc/v3"
	"go.uber.org/atomic"

	"github.com/Technova-K02/eth-monitor/chains"
	"github.com/Technova-K02/eth-monitor/config"
)

const (
	// Delay before reconnecting to the next fallback endpoint, and the longer
	// delay used when the rotation wraps back around to the primary.
	fallbackReconnectDelay = 2 * time.Second
	primaryReconnectDelay  = 5 * time.Second
)

type coordinatorState int32

const (
	stateConnecting coordinatorState = iota
	stateConnected
	stateBackingOff
)

type dialFunc func(ctx context.Context, url string) (EthClient, error)

type probeFunc func(ctx context.Context, endpoint config.Endpoint) error

type clientHolder struct {
	client EthClient
}

// failoverCoordinator owns the single active transport session for one chain.
// On transport failure it rotates to the next endpoint in config order with a
// fixed reconnect delay and retries indefinitely; transport errors are never
// fatal. Events emitted by an abandoned session are discarded.
type failoverCoordinator struct {
	cfg     config.Chain
	dial    dialFunc
	probe   probeFunc
	clock   chains.Clock
	eventCh chan *providerEvent

	fallbackDelay time.Duration
	primaryDelay  time.Duration

	state      *atomic.Int32
	generation *atomic.Int64
	active     *atomic.Value

	// Next block height the next session should resume from, so a failover
	// neither skips nor reprocesses the last completed block. Mutated only on
	// the coordinator's run loop.
	nextHeight int64
}

func newFailoverCoordinator(cfg config.Chain, dial dialFunc, clock chains.Clock,
	eventCh chan *providerEvent) *failoverCoordinator {
	return &failoverCoordinator{
		cfg:           cfg,
		dial:          dial,
		probe:         jsonrpcProbe,
		clock:         clock,
		eventCh:       eventCh,
		fallbackDelay: fallbackReconnectDelay,
		primaryDelay:  primaryReconnectDelay,
		state:         atomic.NewInt32(int32(stateConnecting)),
		generation:    atomic.NewInt64(0),
		active:        &atomic.Value{},
	}
}

// client returns the EthClient of the connected session, or nil while no
// session is up. Callers treat a nil client as a failed fetch and move on.
func (f *failoverCoordinator) client() EthClient {
	holder, ok := f.active.Load().(clientHolder)
	if !ok {
		return nil
	}

	return holder.client
}

func (f *failoverCoordinator) currentState() coordinatorState {
	return coordinatorState(f.state.Load())
}

func (f *failoverCoordinator) run(ctx context.Context) {
	idx := 0
	for {
		endpoint := f.cfg.Endpoints[idx]
		err := f.runSession(ctx, endpoint)
		if ctx.Err() != nil {
			return
		}

		log.Errorf("%s: transport session on %s ended: %v", f.cfg.Chain, endpoint.Name, err)

		idx = (idx + 1) % len(f.cfg.Endpoints)
		delay := f.fallbackDelay
		if idx == 0 {
			// Exhausted the fallbacks, give the primary a little longer.
			delay = f.primaryDelay
		}

		f.state.Store(int32(stateBackingOff))
		select {
		case <-ctx.Done():
			return
		case <-f.clock.After(delay):
		}
	}
}

func (f *failoverCoordinator) runSession(ctx context.Context, endpoint config.Endpoint) error {
	f.state.Store(int32(stateConnecting))

	if err := f.probe(ctx, endpoint); err != nil {
		return fmt.Errorf("endpoint %s failed probe: %w", endpoint.Name, err)
	}

	client, err := f.dial(ctx, endpoint.Url)
	if err != nil {
		return err
	}
	defer func() {
		f.active.Store(clientHolder{})
		client.Close()
	}()

	generation := f.generation.Inc()
	session := newTransportSession(endpoint, client, f.cfg, f.nextHeight, f.clock)

	emit := func(ev *providerEvent) {
		if f.generation.Load() != generation {
			// Late event from an abandoned session.
			return
		}

		ev.provider = endpoint.Name
		if ev.kind == eventNewBlock && ev.block != nil {
			f.nextHeight = ev.block.Number().Int64() + 1
		}

		select {
		case <-ctx.Done():
		case f.eventCh <- ev:
		}
	}

	f.active.Store(clientHolder{client: client})
	f.state.Store(int32(stateConnected))
	log.Infof("%s: connected to %s (%s)", f.cfg.Chain, endpoint.Name, endpoint.Kind)

	return session.run(ctx, emit)
}

// jsonrpcProbe checks that an HTTP endpoint answers a plain eth_blockNumber
// before a session is started on it. Websocket endpoints are validated by the
// dial itself.
func jsonrpcProbe(ctx context.Context, endpoint config.Endpoint) error {
	if !strings.HasPrefix(endpoint.Url, "http") {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	client := jsonrpc.NewClient(endpoint.Url)
	resp, err := client.Call(ctx, "eth_blockNumber")
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("probe rejected: %s", resp.Error.Message)
	}

	return nil
}
