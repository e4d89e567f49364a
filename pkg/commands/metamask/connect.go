package metamask

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hadron-labs/wallet-adapter-evm/wallet"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/browser"
)

type connectReport struct {
	Address     string               `json:"address" yaml:"address" toml:"address"`
	Redirected  bool                 `json:"redirected" yaml:"redirected" toml:"redirected"`
	Navigations []browser.Navigation `json:"navigations" yaml:"navigations" toml:"navigations"`
	ChainID     string               `json:"chain_id,omitempty" yaml:"chain_id,omitempty" toml:"chain_id,omitempty"`
	Chain       string               `json:"chain,omitempty" yaml:"chain,omitempty" toml:"chain,omitempty"`
}

// newConnectCmd creates the "connect" subcommand.
func newConnectCmd(cfg Config) *cobra.Command {
	var f pageFlags

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect the adapter and print the selected account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := openPage(ctx, cmd, cfg, f)
			if err != nil {
				return err
			}
			defer p.Close()

			report, err := connect(ctx, p)
			if err != nil {
				return err
			}

			return printReport(cmd, report)
		},
	}

	addPageFlags(cmd, &f)

	return cmd
}

func connect(ctx context.Context, p *page) (connectReport, error) {
	address, err := p.adapter.Connect(ctx)
	if err != nil {
		return connectReport{}, err
	}

	report := connectReport{
		Address:     address,
		Redirected:  p.adapter.LastConnectRedirected(),
		Navigations: p.window.Navigations(),
	}
	if report.Redirected {
		return report, nil
	}

	injected, err := p.adapter.GetProvider(ctx)
	if err != nil || injected == nil {
		return report, err
	}

	chainID, err := wallet.Call[string](ctx, injected, "eth_chainId")
	if err != nil {
		return report, err
	}
	report.ChainID = chainID
	if name, nerr := wallet.ChainName(chainID); nerr == nil {
		report.Chain = name
	}

	return report, nil
}
