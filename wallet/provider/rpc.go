package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

// RPCProviderConfig holds the configuration of an RPCProvider.
type RPCProviderConfig struct {
	// Required: URL of the node, http(s) or ws(s).
	URL string
	// Optional: IdentifyAsMetaMask sets IsMetaMask on the injected provider, which is useful to
	// drive a MetaMask adapter against a node with unlocked accounts such as anvil.
	IdentifyAsMetaMask bool
	// Optional: Attempts is the number of dial attempts. Defaults to 3.
	Attempts uint
	// Optional: RetryDelay is the pause between dial attempts. Defaults to one second.
	RetryDelay time.Duration
	// Optional: Logger defaults to a no-op logger.
	Logger logger.Logger
}

func (c RPCProviderConfig) validate() error {
	if c.URL == "" {
		return errors.New("rpc url is required")
	}

	return nil
}

var _ wallet.Provider = (*RPCProvider)(nil)

// RPCProvider exposes a node's JSON-RPC endpoint as an EIP-1193 provider. Account requests are
// answered with the node's unlocked accounts.
type RPCProvider struct {
	client     *rpc.Client
	chainID    string
	isMetaMask bool
	lggr       logger.Logger

	mu        sync.Mutex
	closed    bool
	listeners map[wallet.EventName][]wallet.Listener
}

// DialRPC connects to the node at cfg.URL, retrying until eth_chainId answers.
func DialRPC(ctx context.Context, cfg RPCProviderConfig) (*RPCProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate rpc provider config: %w", err)
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	lggr := cfg.Logger
	if lggr == nil {
		lggr = logger.Nop()
	}
	lggr = lggr.Named("rpc")

	var (
		client  *rpc.Client
		chainID hexutil.Uint64
	)
	err := retry.Do(func() error {
		c, err := rpc.DialContext(ctx, cfg.URL)
		if err != nil {
			return fmt.Errorf("failed to dial %s: %w", cfg.URL, err)
		}

		if err := c.CallContext(ctx, &chainID, "eth_chainId"); err != nil {
			c.Close()
			return fmt.Errorf("failed to get chain id: %w", err)
		}
		client = c

		return nil
	},
		retry.Context(ctx),
		retry.Attempts(cfg.Attempts),
		retry.Delay(cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			lggr.Warnw("Dial attempt failed", "attempt", attempt+1, "url", cfg.URL, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc after %d attempts: %w", cfg.Attempts, err)
	}

	lggr.Infow("Connected to node", "url", cfg.URL, "chainId", uint64(chainID))

	return &RPCProvider{
		client:     client,
		chainID:    wallet.FormatChainID(uint64(chainID)),
		isMetaMask: cfg.IdentifyAsMetaMask,
		lggr:       lggr,
		listeners:  make(map[wallet.EventName][]wallet.Listener),
	}, nil
}

// Injected returns the provider as a page would see it.
func (p *RPCProvider) Injected() *wallet.Injected {
	return &wallet.Injected{Provider: p, IsMetaMask: p.isMetaMask}
}

// ChainID returns the chain id reported by the node when dialing, in hex.
func (p *RPCProvider) ChainID() string {
	return p.chainID
}

// Request forwards the call to the node. eth_requestAccounts is served by eth_accounts, since
// a node has no user to ask.
func (p *RPCProvider) Request(ctx context.Context, args wallet.RequestArguments) (json.RawMessage, error) {
	method := args.Method
	if method == "eth_requestAccounts" {
		method = "eth_accounts"
	}

	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, args.Params...); err != nil {
		var rerr rpc.Error
		if errors.As(err, &rerr) {
			perr := &wallet.ProviderRPCError{Code: rerr.ErrorCode(), Message: rerr.Error()}
			var derr rpc.DataError
			if errors.As(err, &derr) {
				perr.Data = derr.ErrorData()
			}

			return nil, perr
		}

		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	return raw, nil
}

// On registers a listener. The node is connected once dialed, so connect listeners are called
// right away with the dialed chain.
func (p *RPCProvider) On(event wallet.EventName, listener wallet.Listener) {
	p.mu.Lock()
	p.listeners[event] = append(p.listeners[event], listener)
	closed := p.closed
	p.mu.Unlock()

	if event == wallet.EventConnect && !closed {
		go listener(wallet.ConnectInfo{ChainID: p.chainID})
	}
}

// Close closes the connection and emits disconnect.
func (p *RPCProvider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	listeners := append([]wallet.Listener(nil), p.listeners[wallet.EventDisconnect]...)
	p.mu.Unlock()

	p.client.Close()

	perr := &wallet.ProviderRPCError{Code: wallet.CodeDisconnected, Message: "rpc connection closed"}
	for _, l := range listeners {
		l(perr)
	}
}
