// Package metamask provides the CLI commands which drive the MetaMask adapter against a
// simulated page.
package metamask

import (
	"context"
	"errors"
	"fmt"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/config"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/provider"
)

// SettingsLoaderFunc loads the settings. path is the value of the --config flag and may be
// empty.
type SettingsLoaderFunc func(path string) (*config.Config, error)

// ProviderOptions are the command line switches which affect the provider.
type ProviderOptions struct {
	Logger logger.Logger
	// Reject makes the wallet refuse account requests.
	Reject bool
}

// ProviderLoaderFunc returns the provider to inject into the page, together with a function
// releasing it.
type ProviderLoaderFunc func(
	ctx context.Context, settings *config.Config, opts ProviderOptions,
) (*wallet.Injected, func(), error)

// MnemonicGeneratorFunc returns a new BIP-39 mnemonic.
type MnemonicGeneratorFunc func() (string, error)

// defaultSettingsLoader reads the environment, and the config file when a path is given.
func defaultSettingsLoader(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadEnv()
	}

	return config.Load(path)
}

// defaultProviderLoader dials the configured node, or creates a simulated wallet when no node
// is configured.
func defaultProviderLoader(
	ctx context.Context, settings *config.Config, opts ProviderOptions,
) (*wallet.Injected, func(), error) {
	if settings.RPC.URL != "" {
		if opts.Reject {
			return nil, nil, errors.New("--reject is not supported with an rpc node")
		}

		p, err := provider.DialRPC(ctx, settings.RPCProvider(opts.Logger))
		if err != nil {
			return nil, nil, err
		}

		return p.Injected(), p.Close, nil
	}

	var approve provider.ApproveFunc
	if opts.Reject {
		approve = func(context.Context, []string) error {
			return errors.New("rejected from the command line")
		}
	}

	w, err := provider.NewSimulatedWallet(provider.SimulatedWalletConfig{
		Keys:    settings.KeyGenerator(),
		ChainID: settings.Wallet.ChainID,
		Approve: approve,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create simulated wallet: %w", err)
	}

	return w.Injected(), func() {}, nil
}

// Deps holds the injectable dependencies for the commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// SettingsLoader loads the settings.
	// Default: config.LoadEnv, or config.Load when --config is set
	SettingsLoader SettingsLoaderFunc

	// ProviderLoader creates the injected provider.
	// Default: provider.DialRPC when rpc.url is set, provider.NewSimulatedWallet otherwise
	ProviderLoader ProviderLoaderFunc

	// MnemonicGenerator creates mnemonics.
	// Default: provider.NewMnemonic
	MnemonicGenerator MnemonicGeneratorFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.SettingsLoader == nil {
		d.SettingsLoader = defaultSettingsLoader
	}
	if d.ProviderLoader == nil {
		d.ProviderLoader = defaultProviderLoader
	}
	if d.MnemonicGenerator == nil {
		d.MnemonicGenerator = provider.NewMnemonic
	}
}
