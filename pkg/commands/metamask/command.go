package metamask

import (
	"github.com/spf13/cobra"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
)

// Config holds the configuration for the metamask commands.
type Config struct {
	// Logger is the logger passed to the adapter and the providers. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// NewCommand creates the metamask command with all subcommands.
//
// Usage:
//
//	rootCmd.AddCommand(metamask.NewCommand(metamask.Config{
//	    Logger: lggr,
//	}))
func NewCommand(cfg Config) *cobra.Command {
	// Apply defaults for optional dependencies
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "metamask",
		Short: "Drive the MetaMask adapter against a simulated page",
	}

	cmd.AddCommand(
		newDetectCmd(cfg),
		newConnectCmd(cfg),
		newSignCmd(cfg),
		newMnemonicCmd(cfg),
	)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path. Environment variables override its values")
	cmd.PersistentFlags().StringP("format", "f", formatYAML, "Report format: json, yaml or toml")

	return cmd
}
