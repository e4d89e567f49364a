package browser

import (
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

var _ Window = (*MemoryWindow)(nil)

// Navigation records a navigation request. Target is empty for same-tab navigations.
type Navigation struct {
	URL    string `json:"url" yaml:"url"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// MemoryWindow is an in-process Window. It is used by tests and by the walletsim command to
// reproduce desktop, mobile and in-app browser environments.
type MemoryWindow struct {
	mu                 sync.Mutex
	ethereum           *wallet.Injected
	reactNativeWebView bool
	userAgent          string
	location           string

	listeners   map[string]map[string]func()
	registered  map[string]int
	navigations []Navigation
}

// MemoryWindowOption configures a MemoryWindow.
type MemoryWindowOption func(*MemoryWindow)

// WithUserAgent sets the navigator user agent.
func WithUserAgent(ua string) MemoryWindowOption {
	return func(w *MemoryWindow) { w.userAgent = ua }
}

// WithLocation sets the current href.
func WithLocation(href string) MemoryWindowOption {
	return func(w *MemoryWindow) { w.location = href }
}

// WithEthereum pre-injects a provider into the global wallet slot.
func WithEthereum(p *wallet.Injected) MemoryWindowOption {
	return func(w *MemoryWindow) { w.ethereum = p }
}

// WithReactNativeWebView exposes the React Native bridge object.
func WithReactNativeWebView() MemoryWindowOption {
	return func(w *MemoryWindow) { w.reactNativeWebView = true }
}

// NewMemoryWindow returns a MemoryWindow at https://localhost/ with no injected provider.
func NewMemoryWindow(opts ...MemoryWindowOption) *MemoryWindow {
	w := &MemoryWindow{
		location:   "https://localhost/",
		listeners:  make(map[string]map[string]func()),
		registered: make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *MemoryWindow) Ethereum() *wallet.Injected {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.ethereum
}

func (w *MemoryWindow) HasReactNativeWebView() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.reactNativeWebView
}

func (w *MemoryWindow) UserAgent() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.userAgent
}

func (w *MemoryWindow) Location() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.location
}

// Navigate records the navigation and moves the window to url.
func (w *MemoryWindow) Navigate(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.navigations = append(w.navigations, Navigation{URL: url})
	w.location = url
}

// Open records the navigation. The current location is unchanged.
func (w *MemoryWindow) Open(url, target string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.navigations = append(w.navigations, Navigation{URL: url, Target: target})
}

func (w *MemoryWindow) AddEventListener(event string, fn func()) func() {
	id := ksuid.New().String()

	w.mu.Lock()
	if w.listeners[event] == nil {
		w.listeners[event] = make(map[string]func())
	}
	w.listeners[event][id] = fn
	w.registered[event]++
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners[event], id)
	}
}

// SetEthereum replaces the provider in the global wallet slot without dispatching any event.
func (w *MemoryWindow) SetEthereum(p *wallet.Injected) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ethereum = p
}

// Inject sets the global provider and dispatches EthereumInitializedEvent, as MetaMask does
// once its content script has run.
func (w *MemoryWindow) Inject(p *wallet.Injected) {
	w.SetEthereum(p)
	w.Dispatch(EthereumInitializedEvent)
}

// InjectAfter calls Inject once d has elapsed. The returned timer can stop the injection.
func (w *MemoryWindow) InjectAfter(d time.Duration, p *wallet.Injected) *time.Timer {
	return time.AfterFunc(d, func() { w.Inject(p) })
}

// Dispatch invokes the listeners currently registered for event.
func (w *MemoryWindow) Dispatch(event string) {
	w.mu.Lock()
	fns := make([]func(), 0, len(w.listeners[event]))
	for _, fn := range w.listeners[event] {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ListenerCount returns the number of listeners currently registered for event.
func (w *MemoryWindow) ListenerCount(event string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.listeners[event])
}

// ListenersRegistered returns how many listeners were ever registered for event.
func (w *MemoryWindow) ListenersRegistered(event string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.registered[event]
}

// Navigations returns the navigations requested so far.
func (w *MemoryWindow) Navigations() []Navigation {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Navigation, len(w.navigations))
	copy(out, w.navigations)

	return out
}
