// Package provider contains EIP-1193 providers which run outside a browser: a simulated
// MetaMask holding real keys, and a bridge to a node's JSON-RPC endpoint. Both can be injected
// into a browser.MemoryWindow to drive the MetaMask adapter from Go.
package provider
