package metamask

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/browser"
)

// Resolver waits for the MetaMask provider to be injected. The wait is armed at most once per
// Resolver: every caller shares the same outcome, and a settled outcome (including a miss) is
// permanent.
type Resolver struct {
	window      browser.Window
	clock       clockwork.Clock
	timeout     time.Duration
	useDeeplink bool
	lggr        logger.Logger

	mu      sync.Mutex
	pending *resolution
}

// resolution is a result cell written exactly once.
type resolution struct {
	once     sync.Once
	done     chan struct{}
	provider *wallet.Injected
}

func (r *resolution) settle(p *wallet.Injected) {
	r.once.Do(func() {
		r.provider = p
		close(r.done)
	})
}

func newResolver(w browser.Window, opts Options, lggr logger.Logger) *Resolver {
	return &Resolver{
		window:      w,
		clock:       opts.Clock,
		timeout:     opts.DetectionTimeout,
		useDeeplink: opts.UseDeeplink,
		lggr:        lggr.Named("resolver"),
	}
}

// Resolve returns the MetaMask provider, waiting up to the detection timeout for a late
// injection. A nil provider with a nil error means MetaMask is not available.
//
// With deep linking enabled, Resolve returns nil straight away in a mobile browser other than
// MetaMask's own, since the page is expected to be reopened inside the wallet.
//
// ctx only bounds the caller's wait. The detection itself always runs to completion.
func (r *Resolver) Resolve(ctx context.Context) (*wallet.Injected, error) {
	if r.useDeeplink && outsideWalletOnMobile(r.window) {
		return nil, nil //nolint:nilnil // not found is not an error here
	}

	res := r.resolution()

	select {
	case <-res.done:
		return res.provider, nil
	default:
	}

	select {
	case <-res.done:
		return res.provider, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolution returns the pending resolution, arming it on first use.
func (r *Resolver) resolution() *resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		return r.pending
	}

	res := &resolution{done: make(chan struct{})}
	r.pending = res
	r.arm(res)

	return res
}

// arm settles res immediately when the provider is already injected. Otherwise it registers a
// one-shot ethereum#initialized listener and a timeout; the first of the two to fire settles
// res and disarms the other.
func (r *Resolver) arm(res *resolution) {
	if p := LocateProvider(r.window.Ethereum()); p != nil {
		res.settle(p)
		return
	}

	var (
		mu      sync.Mutex
		handled bool
		remove  func()
		timer   clockwork.Timer
	)

	handle := func(source string) {
		mu.Lock()
		if handled {
			mu.Unlock()
			return
		}
		handled = true
		mu.Unlock()

		remove()
		timer.Stop()

		p := LocateProvider(r.window.Ethereum())
		if p == nil {
			r.lggr.Errorw("MetaMaskAdapter: Unable to detect window.ethereum.", "source", source)
		} else {
			r.lggr.Debugw("MetaMask provider detected", "source", source)
		}
		res.settle(p)
	}

	// handle cannot run before remove and timer are assigned.
	mu.Lock()
	remove = r.window.AddEventListener(browser.EthereumInitializedEvent, func() { handle("event") })
	timer = r.clock.AfterFunc(r.timeout, func() { handle("timeout") })
	mu.Unlock()

	r.lggr.Debugw("Waiting for MetaMask injection", "timeout", r.timeout)
}
