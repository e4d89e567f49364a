package provider

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

// ApproveFunc decides whether a dapp may see the wallet accounts. Returning an error rejects
// the eth_requestAccounts call with the EIP-1193 "user rejected request" code.
type ApproveFunc func(ctx context.Context, accounts []string) error

// SimulatedWalletConfig configures a SimulatedWallet.
type SimulatedWalletConfig struct {
	// Keys produces the wallet keys. Required.
	Keys KeyGenerator
	// ChainID is the initial chain. Defaults to 1.
	ChainID uint64
	// Approve is consulted on the first eth_requestAccounts. Nil approves every request.
	Approve ApproveFunc
	// Logger defaults to a no-op logger.
	Logger logger.Logger
}

func (c SimulatedWalletConfig) validate() error {
	if c.Keys == nil {
		return errors.New("key generator is required")
	}

	return nil
}

var _ wallet.Provider = (*SimulatedWallet)(nil)

// SimulatedWallet is an in-memory EIP-1193 provider behaving like an unlocked MetaMask
// extension. It holds real keys and produces signatures which verify on chain.
type SimulatedWallet struct {
	approve ApproveFunc
	lggr    logger.Logger

	mu         sync.Mutex
	keys       []*ecdsa.PrivateKey
	addresses  []string
	chainID    uint64
	authorized bool
	listeners  map[wallet.EventName][]wallet.Listener
}

// NewSimulatedWallet returns a SimulatedWallet holding the keys produced by cfg.Keys.
func NewSimulatedWallet(cfg SimulatedWalletConfig) (*SimulatedWallet, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate simulated wallet config: %w", err)
	}

	keys, err := cfg.Keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, errors.New("key generator returned no keys")
	}

	addresses := make([]string, 0, len(keys))
	for _, key := range keys {
		addresses = append(addresses, crypto.PubkeyToAddress(key.PublicKey).Hex())
	}

	chainID := cfg.ChainID
	if chainID == 0 {
		chainID = 1
	}

	lggr := cfg.Logger
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &SimulatedWallet{
		approve:   cfg.Approve,
		lggr:      lggr.Named("simulated"),
		keys:      keys,
		addresses: addresses,
		chainID:   chainID,
		listeners: make(map[wallet.EventName][]wallet.Listener),
	}, nil
}

// Injected returns the wallet as MetaMask injects itself into a page.
func (w *SimulatedWallet) Injected() *wallet.Injected {
	return &wallet.Injected{Provider: w, IsMetaMask: true}
}

// Addresses returns the checksummed addresses held by the wallet.
func (w *SimulatedWallet) Addresses() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.addresses...)
}

// ChainID returns the current chain id in hex.
func (w *SimulatedWallet) ChainID() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return wallet.FormatChainID(w.chainID)
}

// On registers a listener for a provider event.
func (w *SimulatedWallet) On(event wallet.EventName, listener wallet.Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.listeners[event] = append(w.listeners[event], listener)
}

// Request serves an EIP-1193 request.
func (w *SimulatedWallet) Request(ctx context.Context, args wallet.RequestArguments) (json.RawMessage, error) {
	w.lggr.Debugw("Request", "method", args.Method)

	var (
		result any
		err    error
	)
	switch args.Method {
	case "eth_requestAccounts":
		result, err = w.requestAccounts(ctx)
	case "eth_accounts":
		result = w.accounts()
	case "eth_chainId":
		result = w.ChainID()
	case "net_version":
		w.mu.Lock()
		result = fmt.Sprintf("%d", w.chainID)
		w.mu.Unlock()
	case "eth_signTypedData_v4":
		result, err = w.signTypedData(args.Params)
	case "wallet_switchEthereumChain":
		err = w.switchChain(args.Params)
	default:
		err = &wallet.ProviderRPCError{
			Code:    wallet.CodeUnsupportedMethod,
			Message: fmt.Sprintf("The method %q is not supported.", args.Method),
		}
	}
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", args.Method, err)
	}

	return b, nil
}

// Announce emits connect with the current chain, as MetaMask does once it reaches its node.
func (w *SimulatedWallet) Announce() {
	w.emit(wallet.EventConnect, wallet.ConnectInfo{ChainID: w.ChainID()})
}

// SelectAccount makes the account at index i the first exposed account and emits
// accountsChanged when the wallet is authorized.
func (w *SimulatedWallet) SelectAccount(i int) error {
	w.mu.Lock()
	if i < 0 || i >= len(w.addresses) {
		w.mu.Unlock()
		return fmt.Errorf("account index %d out of range", i)
	}
	w.keys[0], w.keys[i] = w.keys[i], w.keys[0]
	w.addresses[0], w.addresses[i] = w.addresses[i], w.addresses[0]
	authorized := w.authorized
	accounts := append([]string(nil), w.addresses...)
	w.mu.Unlock()

	if authorized {
		w.emit(wallet.EventAccountsChanged, accounts)
	}

	return nil
}

// Lock revokes the dapp authorization and emits accountsChanged with no accounts.
func (w *SimulatedWallet) Lock() {
	w.mu.Lock()
	w.authorized = false
	w.mu.Unlock()

	w.emit(wallet.EventAccountsChanged, []string{})
}

// Disconnect emits disconnect with the EIP-1193 disconnected code.
func (w *SimulatedWallet) Disconnect() {
	w.emit(wallet.EventDisconnect, &wallet.ProviderRPCError{
		Code:    wallet.CodeDisconnected,
		Message: "The provider is disconnected from all chains.",
	})
}

func (w *SimulatedWallet) requestAccounts(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	authorized := w.authorized
	accounts := append([]string(nil), w.addresses...)
	w.mu.Unlock()

	if authorized {
		return accounts, nil
	}

	if w.approve != nil {
		if err := w.approve(ctx, accounts); err != nil {
			w.lggr.Infow("Account request rejected", "error", err)
			return nil, &wallet.ProviderRPCError{
				Code:    wallet.CodeUserRejectedRequest,
				Message: "User rejected the request.",
			}
		}
	}

	w.mu.Lock()
	w.authorized = true
	w.mu.Unlock()

	w.emit(wallet.EventAccountsChanged, accounts)

	return accounts, nil
}

func (w *SimulatedWallet) accounts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.authorized {
		return []string{}
	}

	return append([]string(nil), w.addresses...)
}

func (w *SimulatedWallet) signTypedData(params []any) (string, error) {
	if len(params) != 2 {
		return "", invalidParams("expected [address, typedData], got %d params", len(params))
	}

	address, err := wallet.DecodePayload[string](params[0])
	if err != nil {
		return "", invalidParams("invalid address: %v", err)
	}
	payload, err := wallet.DecodePayload[string](params[1])
	if err != nil {
		return "", invalidParams("invalid typed data: %v", err)
	}

	key, err := w.authorizedKey(address)
	if err != nil {
		return "", err
	}

	td, err := wallet.ParseTypedData(payload)
	if err != nil {
		return "", invalidParams("%v", err)
	}
	hash, err := wallet.HashTypedData(td)
	if err != nil {
		return "", invalidParams("%v", err)
	}

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", &wallet.ProviderRPCError{Code: wallet.CodeInternalError, Message: err.Error()}
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

func (w *SimulatedWallet) authorizedKey(address string) (*ecdsa.PrivateKey, error) {
	if !common.IsHexAddress(address) {
		return nil, invalidParams("invalid address %q", address)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.authorized {
		return nil, &wallet.ProviderRPCError{
			Code:    wallet.CodeUnauthorized,
			Message: "The requested account and/or method has not been authorized by the user.",
		}
	}

	for i, a := range w.addresses {
		if strings.EqualFold(a, address) {
			return w.keys[i], nil
		}
	}

	return nil, &wallet.ProviderRPCError{
		Code:    wallet.CodeUnauthorized,
		Message: fmt.Sprintf("The account %s is not held by this wallet.", address),
	}
}

func (w *SimulatedWallet) switchChain(params []any) error {
	if len(params) != 1 {
		return invalidParams("expected [{chainId}], got %d params", len(params))
	}

	req, err := wallet.DecodePayload[wallet.ConnectInfo](params[0])
	if err != nil {
		return invalidParams("invalid chain switch request: %v", err)
	}
	chainID, err := wallet.ParseChainID(req.ChainID)
	if err != nil {
		return invalidParams("%v", err)
	}

	w.mu.Lock()
	changed := w.chainID != chainID
	w.chainID = chainID
	w.mu.Unlock()

	if changed {
		w.emit(wallet.EventChainChanged, wallet.FormatChainID(chainID))
	}

	return nil
}

// emit calls the listeners outside the lock so they may call back into the wallet.
func (w *SimulatedWallet) emit(event wallet.EventName, payload any) {
	w.mu.Lock()
	listeners := append([]wallet.Listener(nil), w.listeners[event]...)
	w.mu.Unlock()

	for _, l := range listeners {
		l(payload)
	}
}

func invalidParams(format string, args ...any) *wallet.ProviderRPCError {
	return &wallet.ProviderRPCError{Code: wallet.CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}
