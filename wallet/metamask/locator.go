package metamask

import "github.com/hadron-labs/wallet-adapter-evm/wallet"

// LocateProvider returns the genuine MetaMask provider among the injected candidates, or nil.
//
// The injected provider is used directly when it reports IsMetaMask and does not carry the
// OverrideIsMetaMask flag other wallets set when impersonating MetaMask. Otherwise, when another
// wallet (Coinbase Wallet for instance) took over the global slot, MetaMask is looked up in the
// sibling Providers list.
func LocateProvider(injected *wallet.Injected) *wallet.Injected {
	if injected == nil {
		return nil
	}

	if injected.IsMetaMask && !injected.OverrideIsMetaMask {
		return injected
	}

	for _, p := range injected.Providers {
		if p != nil && p.IsMetaMask {
			return p
		}
	}

	return nil
}
