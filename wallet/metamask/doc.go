/*
Package metamask implements a wallet adapter for MetaMask's injected EIP-1193 provider.

# Detection

MetaMask injects its provider into the global wallet slot. Several wallets may compete for that
slot, so LocateProvider picks the genuine MetaMask provider: the injected provider itself when it
reports IsMetaMask without the OverrideIsMetaMask spoofing flag, else the first MetaMask entry of
the sibling Providers list.

When nothing is injected yet, the Resolver waits for the ethereum#initialized window event with
a timeout fallback (DefaultDetectionTimeout). Only one wait is ever armed per adapter; concurrent
callers share its outcome.

# Mobile browsers

A mobile browser cannot talk to the MetaMask app directly. Unless deep linking is disabled,
Connect in such a browser reopens the page inside MetaMask Mobile (OpenWithDeeplink) and returns
an empty address. IsMobileWebView detects MetaMask's own in-app browser, where the provider is
injected as on desktop.

# Usage

	adapter, err := metamask.NewAdapter(browser.NewJSWindow(),
		metamask.WithObserver(wallet.ObserverFuncs{
			OnReadyStateChanged: func(s wallet.ReadyState) { fmt.Println("ready:", s) },
			OnAccountsChanged:   func(a []string) { fmt.Println("accounts:", a) },
		}),
	)
	if err != nil {
		return err
	}

	address, err := adapter.Connect(ctx)
	if err != nil {
		return err
	}

	sig, err := adapter.SignTypedData(ctx, typedData, address)
*/
package metamask
