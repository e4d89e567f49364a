package metamask

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

// fakeProvider is a scriptable EIP-1193 provider. Requests are answered by handler and recorded.
type fakeProvider struct {
	mu        sync.Mutex
	handler   func(ctx context.Context, args wallet.RequestArguments) (any, error)
	requests  []wallet.RequestArguments
	listeners map[wallet.EventName][]wallet.Listener
}

func newFakeProvider(handler func(ctx context.Context, args wallet.RequestArguments) (any, error)) *fakeProvider {
	return &fakeProvider{
		handler:   handler,
		listeners: make(map[wallet.EventName][]wallet.Listener),
	}
}

// accountsProvider answers eth_requestAccounts with accounts and echoes signing requests.
func accountsProvider(accounts ...string) *fakeProvider {
	return newFakeProvider(func(_ context.Context, args wallet.RequestArguments) (any, error) {
		switch args.Method {
		case "eth_requestAccounts", "eth_accounts":
			return accounts, nil
		case "eth_signTypedData_v4":
			return fmt.Sprintf("signed:%v:%v", args.Params[0], args.Params[1]), nil
		default:
			return nil, &wallet.ProviderRPCError{Code: wallet.CodeUnsupportedMethod, Message: "unsupported"}
		}
	})
}

func (f *fakeProvider) Request(ctx context.Context, args wallet.RequestArguments) (json.RawMessage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, args)
	f.mu.Unlock()

	res, err := f.handler(ctx, args)
	if err != nil {
		return nil, err
	}

	return json.Marshal(res)
}

func (f *fakeProvider) On(event wallet.EventName, listener wallet.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listeners[event] = append(f.listeners[event], listener)
}

func (f *fakeProvider) emit(event wallet.EventName, payload any) {
	f.mu.Lock()
	ls := append([]wallet.Listener(nil), f.listeners[event]...)
	f.mu.Unlock()

	for _, l := range ls {
		l(payload)
	}
}

func (f *fakeProvider) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Method)
	}

	return out
}

func (f *fakeProvider) listenerCount(event wallet.EventName) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.listeners[event])
}

// countingClock counts the timers armed through AfterFunc.
type countingClock struct {
	clockwork.Clock

	afterFuncs atomic.Int32
}

func (c *countingClock) AfterFunc(d time.Duration, f func()) clockwork.Timer {
	c.afterFuncs.Add(1)

	return c.Clock.AfterFunc(d, f)
}

// recordingObserver collects adapter notifications.
type recordingObserver struct {
	mu          sync.Mutex
	readyStates []wallet.ReadyState
	connects    []wallet.ConnectInfo
	disconnects []*wallet.ProviderRPCError
	accounts    [][]string
	chains      []string
}

func (r *recordingObserver) ReadyStateChanged(s wallet.ReadyState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readyStates = append(r.readyStates, s)
}

func (r *recordingObserver) Connect(info wallet.ConnectInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects = append(r.connects, info)
}

func (r *recordingObserver) Disconnect(err *wallet.ProviderRPCError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnects = append(r.disconnects, err)
}

func (r *recordingObserver) AccountsChanged(a []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = append(r.accounts, a)
}

func (r *recordingObserver) ChainChanged(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains = append(r.chains, id)
}

func (r *recordingObserver) ready() []wallet.ReadyState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]wallet.ReadyState(nil), r.readyStates...)
}

const (
	uaDesktop        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaAndroid        = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"
	uaIPhone         = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	uaIPad           = "Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	uaMetaMaskMobile = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 WebView MetaMaskMobile"

	account1 = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	account2 = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)
