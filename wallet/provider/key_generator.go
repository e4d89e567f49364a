package provider

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/stephenlacy/go-ethereum-hdwallet"
)

// KeyGenerator produces the private keys held by a SimulatedWallet. The first key is the
// account exposed first by eth_accounts.
type KeyGenerator interface {
	Generate() ([]*ecdsa.PrivateKey, error)
}

var (
	_ KeyGenerator = (*keysFromRaw)(nil)
	_ KeyGenerator = (*keysRandom)(nil)
	_ KeyGenerator = (*keysFromMnemonic)(nil)
)

// DefaultDerivationPath is the BIP-44 path template MetaMask derives accounts from.
const DefaultDerivationPath = "m/44'/60'/0'/0/%d"

// KeysFromRaw returns a generator for hex encoded private keys.
func KeysFromRaw(privKeys ...string) KeyGenerator {
	return &keysFromRaw{privKeys: privKeys}
}

type keysFromRaw struct {
	privKeys []string
}

// Generate parses the hex encoded private keys.
func (g *keysFromRaw) Generate() ([]*ecdsa.PrivateKey, error) {
	if len(g.privKeys) == 0 {
		return nil, errors.New("at least one private key is required")
	}

	keys := make([]*ecdsa.PrivateKey, 0, len(g.privKeys))
	for i, raw := range g.privKeys {
		key, err := crypto.HexToECDSA(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert private key %d to ECDSA: %w", i, err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// KeysRandom returns a generator for n random keys. The keys are generated on the first call
// and reused afterwards.
func KeysRandom(n int) KeyGenerator {
	return &keysRandom{n: n}
}

type keysRandom struct {
	n    int
	keys []*ecdsa.PrivateKey
}

// Generate creates the random keys once.
func (g *keysRandom) Generate() ([]*ecdsa.PrivateKey, error) {
	if g.keys != nil {
		return g.keys, nil
	}
	if g.n <= 0 {
		return nil, errors.New("number of random keys must be positive")
	}

	keys := make([]*ecdsa.PrivateKey, 0, g.n)
	for range g.n {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate random private key: %w", err)
		}
		keys = append(keys, key)
	}
	g.keys = keys

	return keys, nil
}

// KeysFromMnemonic returns a generator deriving the first n accounts of a BIP-39 mnemonic along
// DefaultDerivationPath, the way MetaMask derives the accounts of a secret recovery phrase.
func KeysFromMnemonic(mnemonic string, n int) KeyGenerator {
	return &keysFromMnemonic{mnemonic: mnemonic, n: n}
}

type keysFromMnemonic struct {
	mnemonic string
	n        int
}

// Generate derives the keys.
func (g *keysFromMnemonic) Generate() ([]*ecdsa.PrivateKey, error) {
	if !bip39.IsMnemonicValid(g.mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	if g.n <= 0 {
		return nil, errors.New("number of derived accounts must be positive")
	}

	w, err := hdwallet.NewFromMnemonic(g.mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to load mnemonic: %w", err)
	}

	keys := make([]*ecdsa.PrivateKey, 0, g.n)
	for i := range g.n {
		path, err := hdwallet.ParseDerivationPath(fmt.Sprintf(DefaultDerivationPath, i))
		if err != nil {
			return nil, fmt.Errorf("failed to parse derivation path: %w", err)
		}

		account, err := w.Derive(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to derive account %d: %w", i, err)
		}

		key, err := w.PrivateKey(account)
		if err != nil {
			return nil, fmt.Errorf("failed to get private key of account %d: %w", i, err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// NewMnemonic returns a fresh 12 word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	const entropySize = 128

	entropy, err := bip39.NewEntropy(entropySize)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}

	return bip39.NewMnemonic(entropy)
}
