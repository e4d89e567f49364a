package metamask

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

// demoTypedData is signed when no --typed-data file is given.
const demoTypedData = `{
  "types": {
    "EIP712Domain": [
      {"name": "name", "type": "string"},
      {"name": "version", "type": "string"}
    ],
    "Login": [
      {"name": "origin", "type": "string"},
      {"name": "nonce", "type": "uint256"}
    ]
  },
  "primaryType": "Login",
  "domain": {"name": "walletsim", "version": "1"},
  "message": {"origin": "https://localhost", "nonce": "1"}
}`

type signReport struct {
	Address   string `json:"address" yaml:"address" toml:"address"`
	Signature string `json:"signature" yaml:"signature" toml:"signature"`
	Valid     bool   `json:"valid" yaml:"valid" toml:"valid"`
}

// newSignCmd creates the "sign" subcommand, which connects, signs EIP-712 typed data and
// verifies the signature.
func newSignCmd(cfg Config) *cobra.Command {
	var (
		f             pageFlags
		typedDataPath string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign EIP-712 typed data with the connected account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			payload := demoTypedData
			if typedDataPath != "" {
				b, err := os.ReadFile(typedDataPath)
				if err != nil {
					return fmt.Errorf("failed to read typed data: %w", err)
				}
				payload = string(b)
			}

			p, err := openPage(ctx, cmd, cfg, f)
			if err != nil {
				return err
			}
			defer p.Close()

			conn, err := connect(ctx, p)
			if err != nil {
				return err
			}
			if conn.Redirected {
				return errors.New("connect redirected to MetaMask Mobile, nothing to sign with")
			}

			sig, err := p.adapter.SignTypedData(ctx, payload, "")
			if err != nil {
				return fmt.Errorf("failed to sign typed data: %w", err)
			}

			valid, err := wallet.VerifyTypedDataSignature(payload, sig, conn.Address)
			if err != nil {
				return fmt.Errorf("failed to verify signature: %w", err)
			}

			return printReport(cmd, signReport{Address: conn.Address, Signature: sig, Valid: valid})
		},
	}

	addPageFlags(cmd, &f)
	cmd.Flags().StringVarP(&typedDataPath, "typed-data", "t", "", "Path of a JSON typed data document")

	return cmd
}
