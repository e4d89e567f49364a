package metamask

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hadron-labs/wallet-adapter-evm/wallet/browser"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/config"
	mm "github.com/hadron-labs/wallet-adapter-evm/wallet/metamask"
)

const desktopUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/126.0.0.0 Safari/537.36"

// pageFlags describe the simulated page.
type pageFlags struct {
	userAgent   string
	location    string
	inApp       bool
	noWallet    bool
	injectAfter time.Duration
	reject      bool
}

func addPageFlags(cmd *cobra.Command, f *pageFlags) {
	cmd.Flags().StringVar(&f.userAgent, "user-agent", desktopUserAgent, "Navigator user agent of the page")
	cmd.Flags().StringVar(&f.location, "location", "https://localhost/", "URL of the page")
	cmd.Flags().BoolVar(&f.inApp, "in-app", false, "Simulate the MetaMask Mobile in-app browser")
	cmd.Flags().BoolVar(&f.noWallet, "no-wallet", false, "Do not inject any provider")
	cmd.Flags().DurationVar(&f.injectAfter, "inject-after", 0, "Inject the provider after this delay instead of at load")
	cmd.Flags().BoolVar(&f.reject, "reject", false, "Reject the account request")
}

// page is a simulated page with the adapter attached.
type page struct {
	settings *config.Config
	window   *browser.MemoryWindow
	adapter  *mm.Adapter
	release  func()
}

func (p *page) Close() {
	p.release()
}

// openPage loads the settings, builds the window and the provider, and attaches the adapter.
func openPage(ctx context.Context, cmd *cobra.Command, cfg Config, f pageFlags) (*page, error) {
	settings, err := loadSettings(cmd, cfg)
	if err != nil {
		return nil, err
	}

	opts := []browser.MemoryWindowOption{
		browser.WithUserAgent(f.userAgent),
		browser.WithLocation(f.location),
	}
	if f.inApp {
		opts = append(opts, browser.WithReactNativeWebView())
	}
	window := browser.NewMemoryWindow(opts...)

	release := func() {}
	if !f.noWallet {
		injected, closeFn, perr := cfg.Deps.ProviderLoader(ctx, settings, ProviderOptions{
			Logger: cfg.Logger,
			Reject: f.reject,
		})
		if perr != nil {
			return nil, fmt.Errorf("failed to load provider: %w", perr)
		}

		if f.injectAfter > 0 {
			timer := window.InjectAfter(f.injectAfter, injected)
			release = func() {
				timer.Stop()
				closeFn()
			}
		} else {
			window.SetEthereum(injected)
			release = closeFn
		}
	}

	adapter, err := mm.NewAdapter(window, append(settings.Options(), mm.WithLogger(cfg.Logger))...)
	if err != nil {
		release()
		return nil, err
	}

	return &page{settings: settings, window: window, adapter: adapter, release: release}, nil
}

func loadSettings(cmd *cobra.Command, cfg Config) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	settings, err := cfg.Deps.SettingsLoader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return settings, nil
}
