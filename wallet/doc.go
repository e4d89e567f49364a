/*
Package wallet defines the EIP-1193 contract shared by the wallet adapters in this module.

# Overview

Browser wallets inject a provider object into the page. This package models that object and
the notifications an adapter relays to the application:

 1. Provider (provider.go) - the request/response and event surface of an injected wallet
 2. Injected (provider.go) - a provider together with its self-reported identity flags and the
    optional list of sibling providers exposed when several wallets compete for the global slot
 3. ReadyState (ready_state.go) - Loading, Found or NotFound
 4. Observer and Emitter (observer.go) - the fixed notification vocabulary and its fan-out
 5. Errors (errors.go) - ErrWalletNotFound, ErrWalletDisconnected, ConnectionError and the
    EIP-1193 ProviderRPCError

# Calling a provider

	accounts, err := wallet.Call[[]string](ctx, provider, "eth_requestAccounts")
	if err != nil {
		return err
	}

# Observing an adapter

	id := adapter.Subscribe(wallet.ObserverFuncs{
		OnAccountsChanged: func(accounts []string) {
			fmt.Println("accounts:", accounts)
		},
		OnChainChanged: func(chainID string) {
			name, _ := wallet.ChainName(chainID)
			fmt.Println("chain:", name)
		},
	})
	defer adapter.Unsubscribe(id)
*/
package wallet
