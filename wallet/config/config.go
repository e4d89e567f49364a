// Package config loads the settings of the MetaMask adapter and of the wallets used to drive it
// outside a browser, from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/metamask"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/provider"
)

// DeeplinkConfig is the configuration of the MetaMask Mobile deep link.
type DeeplinkConfig struct {
	UniversalHost string `mapstructure:"universal_host" yaml:"universal_host"` // Host of the universal link, e.g. metamask.app.link
	Scheme        string `mapstructure:"scheme" yaml:"scheme"`                 // Custom URL scheme opened on Android
}

// AdapterConfig is the configuration of the MetaMask adapter.
type AdapterConfig struct {
	UseDeeplink      bool           `mapstructure:"use_deeplink" yaml:"use_deeplink"`           // Redirect mobile browsers to MetaMask Mobile
	DetectionTimeout time.Duration  `mapstructure:"detection_timeout" yaml:"detection_timeout"` // How long to wait for a late injection
	Deeplink         DeeplinkConfig `mapstructure:"deeplink" yaml:"deeplink"`
}

// WalletConfig is the configuration of the simulated wallet.
//
// WARNING: This data type contains sensitive fields and should not be logged or set in file
// configuration.
type WalletConfig struct {
	Mnemonic   string `mapstructure:"mnemonic" yaml:"mnemonic,omitempty"`       // Secret: BIP-39 mnemonic the accounts are derived from
	PrivateKey string `mapstructure:"private_key" yaml:"private_key,omitempty"` // Secret: Hex private key of a single account
	Accounts   int    `mapstructure:"accounts" yaml:"accounts"`                 // Number of derived or random accounts
	ChainID    uint64 `mapstructure:"chain_id" yaml:"chain_id"`                 // Initial chain id
}

// RPCConfig is the configuration of the JSON-RPC node provider.
type RPCConfig struct {
	URL        string        `mapstructure:"url" yaml:"url"`                 // Node URL. When set, the node is used instead of the simulated wallet
	Attempts   uint          `mapstructure:"attempts" yaml:"attempts"`       // Dial attempts
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"` // Pause between dial attempts
}

// LogConfig is the logger configuration.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`             // debug, info, warn or error
	Development bool   `mapstructure:"development" yaml:"development"` // Human readable output
}

// Config wraps the entire configuration.
type Config struct {
	Adapter AdapterConfig `mapstructure:"adapter" yaml:"adapter"`
	Wallet  WalletConfig  `mapstructure:"wallet" yaml:"wallet"`
	RPC     RPCConfig     `mapstructure:"rpc" yaml:"rpc"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Validate checks the settings which cannot be checked by the components themselves.
func (c *Config) Validate() error {
	if c.Wallet.Mnemonic != "" && c.Wallet.PrivateKey != "" {
		return errors.New("wallet mnemonic and private key are mutually exclusive")
	}
	if c.Wallet.Accounts < 0 {
		return errors.New("wallet accounts must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// Options converts the adapter configuration into adapter options.
func (c *Config) Options() []metamask.Option {
	return []metamask.Option{
		metamask.WithUseDeeplink(c.Adapter.UseDeeplink),
		metamask.WithDetectionTimeout(c.Adapter.DetectionTimeout),
		metamask.WithDeeplink(metamask.DeeplinkConfig{
			UniversalHost: c.Adapter.Deeplink.UniversalHost,
			Scheme:        c.Adapter.Deeplink.Scheme,
		}),
	}
}

// Logger returns the logger configuration.
func (c *Config) Logger() (logger.Config, error) {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	return logger.Config{Level: lvl, Development: c.Log.Development}, nil
}

// KeyGenerator returns the key source of the simulated wallet: the mnemonic when set, then the
// private key, and random keys otherwise.
func (c *Config) KeyGenerator() provider.KeyGenerator {
	accounts := max(c.Wallet.Accounts, 1)

	switch {
	case c.Wallet.Mnemonic != "":
		return provider.KeysFromMnemonic(c.Wallet.Mnemonic, accounts)
	case c.Wallet.PrivateKey != "":
		return provider.KeysFromRaw(c.Wallet.PrivateKey)
	default:
		return provider.KeysRandom(accounts)
	}
}

// RPCProvider returns the node provider configuration.
func (c *Config) RPCProvider(lggr logger.Logger) provider.RPCProviderConfig {
	return provider.RPCProviderConfig{
		URL:                c.RPC.URL,
		IdentifyAsMetaMask: true,
		Attempts:           c.RPC.Attempts,
		RetryDelay:         c.RPC.RetryDelay,
		Logger:             lggr,
	}
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	// A missing file is not an error, the environment and the defaults still apply.
	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// newViper returns a viper instance carrying the defaults.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("adapter.use_deeplink", true)
	v.SetDefault("adapter.detection_timeout", metamask.DefaultDetectionTimeout)
	v.SetDefault("adapter.deeplink.universal_host", metamask.DefaultDeeplinkHost)
	v.SetDefault("adapter.deeplink.scheme", metamask.DefaultDeeplinkScheme)
	v.SetDefault("wallet.accounts", 1)
	v.SetDefault("wallet.chain_id", 1)
	v.SetDefault("rpc.attempts", 3)
	v.SetDefault("rpc.retry_delay", time.Second)
	v.SetDefault("log.level", "info")

	return v
}

var (
	// envBindings maps a config key to the environment variables that can provide its value.
	//
	// The first element in the list is the preferred name, the following ones are accepted for
	// compatibility with common tooling. Viper uses the first one that is set.
	envBindings = map[string][]string{
		"adapter.use_deeplink":            {"METAMASK_USE_DEEPLINK"},
		"adapter.detection_timeout":       {"METAMASK_DETECTION_TIMEOUT"},
		"adapter.deeplink.universal_host": {"METAMASK_DEEPLINK_HOST"},
		"adapter.deeplink.scheme":         {"METAMASK_DEEPLINK_SCHEME"},
		"wallet.mnemonic":                 {"WALLET_MNEMONIC", "MNEMONIC"},
		"wallet.private_key":              {"WALLET_PRIVATE_KEY", "PRIVATE_KEY"},
		"wallet.accounts":                 {"WALLET_ACCOUNTS"},
		"wallet.chain_id":                 {"WALLET_CHAIN_ID"},
		"rpc.url":                         {"WALLET_RPC_URL", "ETH_RPC_URL"},
		"rpc.attempts":                    {"WALLET_RPC_ATTEMPTS"},
		"rpc.retry_delay":                 {"WALLET_RPC_RETRY_DELAY"},
		"log.level":                       {"LOG_LEVEL"},
		"log.development":                 {"LOG_DEVELOPMENT"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
