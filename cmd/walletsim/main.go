// Package main provides walletsim, a CLI which drives the MetaMask adapter against a simulated
// page backed by an in-memory wallet or a local node.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/commands"
	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lggr, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	root := &cobra.Command{
		Use:           "walletsim",
		Short:         "Exercise the MetaMask wallet adapter outside a browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(commands.New(lggr).MetaMask(commands.MetaMaskConfig{}))

	return root.ExecuteContext(ctx)
}

// newLogger builds the logger from LOG_LEVEL and LOG_DEVELOPMENT. The config file is not read
// here since its path is only known once the flags are parsed.
func newLogger() (logger.Logger, error) {
	settings, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lcfg, err := settings.Logger()
	if err != nil {
		return nil, err
	}

	return lcfg.New()
}
