package metamask

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/config"
	mm "github.com/hadron-labs/wallet-adapter-evm/wallet/metamask"
)

const (
	testMnemonic = "test test test test test test test test test test test junk"
	testAddress0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testAddress1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	androidUserAgent = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/126.0.0.0 Mobile Safari/537.36"
)

// testSettings returns settings with a short detection timeout and a deterministic wallet.
func testSettings() *config.Config {
	return &config.Config{
		Adapter: config.AdapterConfig{
			UseDeeplink:      true,
			DetectionTimeout: 200 * time.Millisecond,
			Deeplink: config.DeeplinkConfig{
				UniversalHost: mm.DefaultDeeplinkHost,
				Scheme:        mm.DefaultDeeplinkScheme,
			},
		},
		Wallet: config.WalletConfig{Mnemonic: testMnemonic, Accounts: 2, ChainID: 1},
		RPC:    config.RPCConfig{Attempts: 1, RetryDelay: time.Millisecond},
		Log:    config.LogConfig{Level: "info"},
	}
}

func fixedSettings(settings *config.Config) SettingsLoaderFunc {
	return func(string) (*config.Config, error) { return settings, nil }
}

func runCommand(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand(Config{Logger: logger.Nop(), Deps: deps})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})

	assert.Equal(t, "metamask", cmd.Use)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "f", format.Shorthand)
	assert.Equal(t, formatYAML, format.DefValue)

	for _, sub := range cmd.Commands() {
		if sub.Use == "mnemonic" {
			assert.Nil(t, sub.Flags().Lookup("user-agent"))
			continue
		}
		for _, name := range []string{"user-agent", "location", "in-app", "no-wallet", "inject-after", "reject"} {
			assert.NotNil(t, sub.Flags().Lookup(name), "%s is missing --%s", sub.Use, name)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		giveArgs  []string
		wantState string
		wantMob   bool
		wantInApp bool
	}{
		{
			name:      "injected at load",
			wantState: "Found",
		},
		{
			name:      "late injection",
			giveArgs:  []string{"--inject-after", "20ms"},
			wantState: "Found",
		},
		{
			name:      "no wallet",
			giveArgs:  []string{"--no-wallet"},
			wantState: "NotFound",
		},
		{
			name:      "metamask in-app browser",
			giveArgs:  []string{"--user-agent", androidUserAgent + " MetaMaskMobile", "--in-app"},
			wantState: "Found",
			wantMob:   true,
			wantInApp: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := runCommand(t, Deps{SettingsLoader: fixedSettings(testSettings())},
				append([]string{"detect"}, tt.giveArgs...)...)
			require.NoError(t, err)

			var got detectReport
			require.NoError(t, yaml.Unmarshal([]byte(out), &got))
			assert.Equal(t, detectReport{
				Adapter:         mm.Name,
				URL:             mm.URL,
				ReadyState:      tt.wantState,
				MobileBrowser:   tt.wantMob,
				InWalletWebView: tt.wantInApp,
			}, got)
		})
	}
}

func TestConnect(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, Deps{SettingsLoader: fixedSettings(testSettings())}, "connect", "-f", "json")
	require.NoError(t, err)

	var got connectReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, testAddress0, got.Address)
	assert.False(t, got.Redirected)
	assert.Empty(t, got.Navigations)
	assert.Equal(t, "0x1", got.ChainID)
	assert.Equal(t, "ethereum-mainnet", got.Chain)
}

func TestConnect_MobileRedirect(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, Deps{SettingsLoader: fixedSettings(testSettings())},
		"connect", "--user-agent", androidUserAgent, "--location", "https://app.example.com/swap")
	require.NoError(t, err)

	var got connectReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.Address)
	assert.True(t, got.Redirected)
	require.Len(t, got.Navigations, 1)
	assert.True(t, strings.HasPrefix(got.Navigations[0].URL, "dapp://"), got.Navigations[0].URL)
	assert.Empty(t, got.ChainID)
}

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		_, err := runCommand(t, Deps{SettingsLoader: fixedSettings(testSettings())}, "connect", "--reject")
		require.ErrorIs(t, err, wallet.ErrWalletConnection)
		assert.True(t, wallet.IsUserRejected(err))
	})

	t.Run("no wallet", func(t *testing.T) {
		t.Parallel()

		_, err := runCommand(t, Deps{SettingsLoader: fixedSettings(testSettings())}, "connect", "--no-wallet")
		require.ErrorIs(t, err, wallet.ErrWalletNotFound)
	})

	t.Run("settings", func(t *testing.T) {
		t.Parallel()

		_, err := runCommand(t, Deps{
			SettingsLoader: func(string) (*config.Config, error) { return nil, errors.New("boom") },
		}, "connect")
		require.ErrorContains(t, err, "failed to load config: boom")
	})

	t.Run("invalid settings", func(t *testing.T) {
		t.Parallel()

		settings := testSettings()
		settings.Wallet.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

		_, err := runCommand(t, Deps{SettingsLoader: fixedSettings(settings)}, "connect")
		require.ErrorContains(t, err, "wallet mnemonic and private key are mutually exclusive")
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		_, err := runCommand(t, Deps{SettingsLoader: fixedSettings(testSettings())}, "connect", "-f", "xml")
		require.ErrorContains(t, err, `unsupported report format "xml"`)
	})
}

func TestConnect_RPCNode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var result any
		switch req.Method {
		case "eth_chainId":
			result = "0xaa36a7"
		case "eth_accounts":
			result = []string{testAddress1}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	t.Cleanup(srv.Close)

	settings := testSettings()
	settings.RPC.URL = srv.URL

	out, err := runCommand(t, Deps{SettingsLoader: fixedSettings(settings)}, "connect", "-f", "toml")
	require.NoError(t, err)

	var got connectReport
	require.NoError(t, toml.Unmarshal([]byte(out), &got))
	assert.Equal(t, testAddress1, got.Address)
	assert.Equal(t, "0xaa36a7", got.ChainID)
	assert.Equal(t, "ethereum-testnet-sepolia", got.Chain)

	_, err = runCommand(t, Deps{SettingsLoader: fixedSettings(settings)}, "connect", "--reject")
	require.ErrorContains(t, err, "--reject is not supported with an rpc node")
}

func TestSign(t *testing.T) {
	t.Parallel()

	typedDataPath := filepath.Join(t.TempDir(), "typed_data.json")
	require.NoError(t, os.WriteFile(typedDataPath, []byte(demoTypedData), 0o600))

	tests := []struct {
		name     string
		giveArgs []string
		wantErr  string
	}{
		{name: "demo typed data"},
		{name: "typed data file", giveArgs: []string{"--typed-data", typedDataPath}},
		{name: "missing file", giveArgs: []string{"-t", filepath.Join(t.TempDir(), "missing.json")}, wantErr: "failed to read typed data"},
		{name: "redirected", giveArgs: []string{"--user-agent", androidUserAgent}, wantErr: "nothing to sign with"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := runCommand(t, Deps{SettingsLoader: fixedSettings(testSettings())},
				append([]string{"sign", "-f", "json"}, tt.giveArgs...)...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var got signReport
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, testAddress0, got.Address)
			assert.Len(t, got.Signature, 132)
			assert.True(t, got.Valid)
		})
	}
}

func TestMnemonic(t *testing.T) {
	t.Parallel()

	deps := Deps{
		MnemonicGenerator: func() (string, error) { return testMnemonic, nil },
	}

	out, err := runCommand(t, deps, "mnemonic", "-n", "2", "-f", "toml")
	require.NoError(t, err)

	var got mnemonicReport
	require.NoError(t, toml.Unmarshal([]byte(out), &got))
	assert.Equal(t, mnemonicReport{
		Mnemonic:  testMnemonic,
		Addresses: []string{testAddress0, testAddress1},
	}, got)

	_, err = runCommand(t, Deps{MnemonicGenerator: func() (string, error) { return "", assert.AnError }}, "mnemonic")
	require.ErrorIs(t, err, assert.AnError)
}

func TestMnemonic_Generated(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, Deps{}, "mnemonic")
	require.NoError(t, err)

	var got mnemonicReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Len(t, strings.Fields(got.Mnemonic), 12)
	assert.Len(t, got.Addresses, 1)
}
