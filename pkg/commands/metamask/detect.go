package metamask

import (
	"fmt"

	"github.com/spf13/cobra"

	mm "github.com/hadron-labs/wallet-adapter-evm/wallet/metamask"
)

type detectReport struct {
	Adapter         string `json:"adapter" yaml:"adapter" toml:"adapter"`
	URL             string `json:"url" yaml:"url" toml:"url"`
	ReadyState      string `json:"ready_state" yaml:"ready_state" toml:"ready_state"`
	MobileBrowser   bool   `json:"mobile_browser" yaml:"mobile_browser" toml:"mobile_browser"`
	InWalletWebView bool   `json:"in_wallet_webview" yaml:"in_wallet_webview" toml:"in_wallet_webview"`
}

// newDetectCmd creates the "detect" subcommand, which reports the adapter ready state once
// detection has settled.
func newDetectCmd(cfg Config) *cobra.Command {
	var f pageFlags

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect MetaMask in the simulated page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := openPage(ctx, cmd, cfg, f)
			if err != nil {
				return err
			}
			defer p.Close()

			state, err := p.adapter.WaitReady(ctx)
			if err != nil {
				return fmt.Errorf("detection did not settle: %w", err)
			}

			return printReport(cmd, detectReport{
				Adapter:         p.adapter.Name(),
				URL:             p.adapter.URL(),
				ReadyState:      state.String(),
				MobileBrowser:   mm.IsMobileBrowser(p.window.UserAgent()),
				InWalletWebView: mm.IsMobileWebView(p.window),
			})
		},
	}

	addPageFlags(cmd, &f)

	return cmd
}
