package metamask

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/hadron-labs/wallet-adapter-evm/wallet/provider"
)

type mnemonicReport struct {
	Mnemonic  string   `json:"mnemonic" yaml:"mnemonic" toml:"mnemonic"`
	Addresses []string `json:"addresses" yaml:"addresses" toml:"addresses"`
}

// newMnemonicCmd creates the "mnemonic" subcommand, which prints a new secret recovery phrase
// for the simulated wallet along with the accounts MetaMask would derive from it.
func newMnemonicCmd(cfg Config) *cobra.Command {
	var accounts int

	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate a mnemonic for the simulated wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic, err := cfg.Deps.MnemonicGenerator()
			if err != nil {
				return err
			}

			keys, err := provider.KeysFromMnemonic(mnemonic, accounts).Generate()
			if err != nil {
				return err
			}

			report := mnemonicReport{Mnemonic: mnemonic}
			for _, k := range keys {
				report.Addresses = append(report.Addresses, crypto.PubkeyToAddress(k.PublicKey).Hex())
			}

			return printReport(cmd, report)
		},
	}

	cmd.Flags().IntVarP(&accounts, "accounts", "n", 1, "Number of accounts to derive")

	return cmd
}
