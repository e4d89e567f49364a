// Package browser abstracts the global environment of a web page as seen by a wallet adapter.
package browser

import "github.com/hadron-labs/wallet-adapter-evm/wallet"

// EthereumInitializedEvent is dispatched on the window once MetaMask has injected its provider.
const EthereumInitializedEvent = "ethereum#initialized"

// Window is a read-only view of the page globals an adapter inspects, plus the two navigation
// primitives used for deep linking. Every getter returns a fresh snapshot.
type Window interface {
	// Ethereum returns the provider in the global wallet slot, or nil when nothing is injected.
	Ethereum() *wallet.Injected
	// HasReactNativeWebView reports whether the React Native bridge object is present.
	HasReactNativeWebView() bool
	UserAgent() string
	// Location returns the current href.
	Location() string
	// Navigate replaces the current document with url.
	Navigate(url string)
	// Open opens url in the browsing context named target.
	Open(url, target string)
	// AddEventListener registers fn for a window event and returns a function removing it.
	// The remove function is idempotent. fn must not be called synchronously from within
	// AddEventListener, only from a later dispatch.
	AddEventListener(event string, fn func()) (remove func())
}
