// Package commands provides modular CLI command packages for wallet tooling.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	commands := commands.New(lggr)
//	app.AddCommand(
//	    commands.MetaMask(commands.MetaMaskConfig{}),
//	)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/hadron-labs/wallet-adapter-evm/pkg/commands/metamask"
//
//	app.AddCommand(metamask.NewCommand(metamask.Config{
//	    Logger: lggr,
//	    Deps:   metamask.Deps{...},  // inject fakes for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/commands/metamask"
	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// MetaMaskConfig holds configuration for the metamask commands.
type MetaMaskConfig struct {
	// Deps overrides the settings, provider and mnemonic sources. Zero values use the
	// production defaults.
	Deps metamask.Deps
}

// MetaMask creates the metamask command group.
//
// Usage:
//
//	cmds := commands.New(lggr)
//	rootCmd.AddCommand(cmds.MetaMask(commands.MetaMaskConfig{}))
func (c *Commands) MetaMask(cfg MetaMaskConfig) *cobra.Command {
	return metamask.NewCommand(metamask.Config{
		Logger: c.lggr,
		Deps:   cfg.Deps,
	})
}
