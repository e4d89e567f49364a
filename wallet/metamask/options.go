package metamask

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

const (
	// DefaultDetectionTimeout bounds the wait for a late injected provider.
	DefaultDetectionTimeout = 3 * time.Second
	// DefaultDeeplinkHost is the MetaMask universal link host.
	DefaultDeeplinkHost = "metamask.app.link"
	// DefaultDeeplinkScheme is the custom scheme registered by MetaMask Mobile.
	DefaultDeeplinkScheme = "dapp"
)

// DeeplinkConfig holds the targets used to hand the page over to MetaMask Mobile.
type DeeplinkConfig struct {
	UniversalHost string
	Scheme        string
}

// Options configures an Adapter.
type Options struct {
	// UseDeeplink enables the mobile redirect in Connect. When disabled the provider is
	// resolved in-process even in an external mobile browser. Defaults to true.
	UseDeeplink bool
	// DetectionTimeout bounds the wait for the ethereum#initialized event. Defaults to
	// DefaultDetectionTimeout.
	DetectionTimeout time.Duration
	// Deeplink configures the redirect targets.
	Deeplink DeeplinkConfig
	// Logger defaults to logger.New() when nil.
	Logger logger.Logger
	// Clock drives the detection timeout. Defaults to the real clock.
	Clock clockwork.Clock
	// Observers are subscribed before detection starts so that they never miss the readiness
	// notification.
	Observers []wallet.Observer
}

// Option modifies Options.
type Option func(*Options)

// WithUseDeeplink toggles the mobile deep link redirect.
func WithUseDeeplink(enabled bool) Option {
	return func(o *Options) { o.UseDeeplink = enabled }
}

// WithDetectionTimeout overrides DefaultDetectionTimeout.
func WithDetectionTimeout(d time.Duration) Option {
	return func(o *Options) { o.DetectionTimeout = d }
}

// WithDeeplink overrides the deep link host and scheme.
func WithDeeplink(cfg DeeplinkConfig) Option {
	return func(o *Options) { o.Deeplink = cfg }
}

// WithLogger sets the adapter logger.
func WithLogger(lggr logger.Logger) Option {
	return func(o *Options) { o.Logger = lggr }
}

// WithClock sets the clock driving the detection timeout.
func WithClock(clock clockwork.Clock) Option {
	return func(o *Options) { o.Clock = clock }
}

// WithObserver subscribes o before detection starts.
func WithObserver(o wallet.Observer) Option {
	return func(opts *Options) { opts.Observers = append(opts.Observers, o) }
}

func defaultOptions() Options {
	return Options{
		UseDeeplink:      true,
		DetectionTimeout: DefaultDetectionTimeout,
		Deeplink: DeeplinkConfig{
			UniversalHost: DefaultDeeplinkHost,
			Scheme:        DefaultDeeplinkScheme,
		},
		Clock: clockwork.NewRealClock(),
	}
}

// validate checks if the Options are valid.
func (o Options) validate() error {
	if o.DetectionTimeout <= 0 {
		return errors.New("detection timeout must be positive")
	}
	if o.Deeplink.UniversalHost == "" {
		return errors.New("deeplink universal host is required")
	}
	if o.Deeplink.Scheme == "" {
		return errors.New("deeplink scheme is required")
	}
	if o.Clock == nil {
		return errors.New("clock is required")
	}

	return nil
}
