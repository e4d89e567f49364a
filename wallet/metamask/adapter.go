package metamask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/browser"
)

// Adapter connects an application to MetaMask through its injected EIP-1193 provider.
//
// Detection starts in NewAdapter. When the provider is already injected the adapter is Found
// synchronously; otherwise a background resolution waits for the ethereum#initialized event or
// the detection timeout, moves the adapter to Found or NotFound and notifies observers with
// ReadyStateChanged.
type Adapter struct {
	window   browser.Window
	opts     Options
	lggr     logger.Logger
	resolver *Resolver
	emitter  wallet.Emitter
	ready    chan struct{}

	mu         sync.RWMutex
	readyState wallet.ReadyState
	address    string
	inflight   int
	redirected bool
}

// NewAdapter returns an Adapter for the page w and starts provider detection.
func NewAdapter(w browser.Window, opts ...Option) (*Adapter, error) {
	if w == nil {
		return nil, errors.New("window is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.Logger == nil {
		lggr, err := logger.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create default logger: %w", err)
		}
		o.Logger = lggr
	}

	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate adapter options: %w", err)
	}

	lggr := o.Logger.Named("metamask")
	a := &Adapter{
		window:     w,
		opts:       o,
		lggr:       lggr,
		resolver:   newResolver(w, o, lggr),
		ready:      make(chan struct{}),
		readyState: wallet.ReadyStateLoading,
	}
	for _, obs := range o.Observers {
		a.emitter.Subscribe(obs)
	}

	if p := LocateProvider(w.Ethereum()); p != nil {
		a.readyState = wallet.ReadyStateFound
		a.listenEvents(p)
		close(a.ready)

		return a, nil
	}

	go a.awaitProvider()

	return a, nil
}

// awaitProvider settles the ready state from the resolver outcome.
func (a *Adapter) awaitProvider() {
	// Background never expires, so the only outcomes are a provider or nil.
	p, _ := a.resolver.Resolve(context.Background())

	state := wallet.ReadyStateNotFound
	if p != nil {
		state = wallet.ReadyStateFound
		a.listenEvents(p)
	}

	a.mu.Lock()
	a.readyState = state
	a.mu.Unlock()

	a.lggr.Infow("MetaMask detection finished", "readyState", state)
	a.emitter.EmitReadyStateChanged(state)
	close(a.ready)
}

// Name returns the adapter name.
func (*Adapter) Name() string { return Name }

// URL returns the wallet homepage.
func (*Adapter) URL() string { return URL }

// Icon returns the wallet logo as a data URI.
func (*Adapter) Icon() string { return Icon() }

// ReadyState returns the current detection state.
func (a *Adapter) ReadyState() wallet.ReadyState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.readyState
}

// WaitReady blocks until detection has settled and returns the final ready state.
func (a *Adapter) WaitReady(ctx context.Context) (wallet.ReadyState, error) {
	select {
	case <-a.ready:
		return a.ReadyState(), nil
	case <-ctx.Done():
		return wallet.ReadyStateLoading, ctx.Err()
	}
}

// Address returns the connected address, or an empty string.
func (a *Adapter) Address() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.address
}

// Connected reports whether an address is known.
func (a *Adapter) Connected() bool {
	return a.Address() != ""
}

// Connecting reports whether an eth_requestAccounts call is in flight.
func (a *Adapter) Connecting() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.inflight > 0
}

// LastConnectRedirected reports whether the latest Connect call handed the page over to
// MetaMask Mobile instead of requesting accounts.
func (a *Adapter) LastConnectRedirected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.redirected
}

// Subscribe registers o for the adapter notifications.
func (a *Adapter) Subscribe(o wallet.Observer) wallet.SubscriptionID {
	return a.emitter.Subscribe(o)
}

// Unsubscribe removes a previously registered observer.
func (a *Adapter) Unsubscribe(id wallet.SubscriptionID) bool {
	return a.emitter.Unsubscribe(id)
}

// GetProvider returns the MetaMask provider, or nil when it is not available.
func (a *Adapter) GetProvider(ctx context.Context) (*wallet.Injected, error) {
	return a.resolver.Resolve(ctx)
}

// Connect requests the user's accounts and returns the first one.
//
// In a mobile browser other than MetaMask's own, and with deep linking enabled, Connect opens
// the page in MetaMask Mobile and returns an empty address without error. Use
// LastConnectRedirected to tell this outcome apart.
func (a *Adapter) Connect(ctx context.Context) (string, error) {
	if a.opts.UseDeeplink && outsideWalletOnMobile(a.window) {
		OpenWithDeeplink(a.window, a.opts.Deeplink, a.lggr)
		a.mu.Lock()
		a.redirected = true
		a.mu.Unlock()

		return "", nil
	}

	a.mu.Lock()
	a.redirected = false
	a.inflight++
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inflight--
		a.mu.Unlock()
	}()

	p, err := a.resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", wallet.ErrWalletNotFound
	}

	accounts, err := wallet.Call[[]string](ctx, p, "eth_requestAccounts")
	if err != nil {
		return "", wallet.NewConnectionError("failed to request accounts", err)
	}
	if len(accounts) == 0 {
		return "", wallet.NewConnectionError("No accounts are available.", nil)
	}

	a.mu.Lock()
	a.address = accounts[0]
	a.mu.Unlock()

	a.lggr.Infow("Connected to MetaMask", "address", accounts[0])

	return accounts[0], nil
}

// SignTypedData signs EIP-712 typed data with eth_signTypedData_v4 and returns the signature.
//
// typedData is sent unchanged when it is a string, []byte or json.RawMessage; anything else,
// typically an apitypes.TypedData, is encoded to JSON. address defaults to the connected one.
func (a *Adapter) SignTypedData(ctx context.Context, typedData any, address string) (string, error) {
	p, err := a.prepareProvider(ctx)
	if err != nil {
		return "", err
	}
	if !a.Connected() {
		return "", wallet.ErrWalletDisconnected
	}
	if address == "" {
		address = a.Address()
	}

	payload, err := typedDataPayload(typedData)
	if err != nil {
		return "", err
	}

	return wallet.Call[string](ctx, p, "eth_signTypedData_v4", address, payload)
}

// prepareProvider resolves the provider and requires it to be present.
func (a *Adapter) prepareProvider(ctx context.Context) (*wallet.Injected, error) {
	p, err := a.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, wallet.ErrWalletNotFound
	}

	return p, nil
}

func typedDataPayload(typedData any) (string, error) {
	switch v := typedData.(type) {
	case nil:
		return "", errors.New("typed data is required")
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode typed data: %w", err)
		}

		return string(b), nil
	}
}

// listenEvents relays the provider events to the adapter observers.
func (a *Adapter) listenEvents(p *wallet.Injected) {
	p.On(wallet.EventConnect, func(payload any) {
		info, err := wallet.DecodeConnectInfo(payload)
		if err != nil {
			a.lggr.Warnw("Dropping malformed connect event", "error", err)
			return
		}
		a.emitter.EmitConnect(info)
	})

	p.On(wallet.EventDisconnect, func(payload any) {
		a.emitter.EmitDisconnect(a.disconnectError(payload))
	})

	p.On(wallet.EventAccountsChanged, a.onAccountsChanged)

	p.On(wallet.EventChainChanged, func(payload any) {
		chainID, err := wallet.DecodeChainID(payload)
		if err != nil {
			a.lggr.Warnw("Dropping malformed chainChanged event", "error", err)
			return
		}
		if name, nerr := wallet.ChainName(chainID); nerr == nil {
			a.lggr.Debugw("Chain changed", "chainId", chainID, "chain", name)
		}
		a.emitter.EmitChainChanged(chainID)
	})
}

func (a *Adapter) onAccountsChanged(payload any) {
	accounts, err := wallet.DecodePayload[[]string](payload)
	if err != nil {
		a.lggr.Warnw("Dropping malformed accountsChanged event", "error", err)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}

	a.mu.Lock()
	if len(accounts) > 0 {
		a.address = accounts[0]
	} else {
		a.address = ""
	}
	a.mu.Unlock()

	a.emitter.EmitAccountsChanged(accounts)
}

func (a *Adapter) disconnectError(payload any) *wallet.ProviderRPCError {
	switch v := payload.(type) {
	case nil:
		return nil
	case *wallet.ProviderRPCError:
		return v
	case error:
		return &wallet.ProviderRPCError{Code: wallet.CodeDisconnected, Message: v.Error()}
	}

	perr, err := wallet.DecodePayload[*wallet.ProviderRPCError](payload)
	if err != nil {
		a.lggr.Warnw("Malformed disconnect payload", "error", err)
		return &wallet.ProviderRPCError{Code: wallet.CodeDisconnected, Message: "disconnected"}
	}

	return perr
}
