package wallet

import (
	"context"
	"encoding/json"
	"fmt"
)

// EventName enumerates the EIP-1193 provider events relayed by adapters.
type EventName string

const (
	EventConnect         EventName = "connect"
	EventDisconnect      EventName = "disconnect"
	EventAccountsChanged EventName = "accountsChanged"
	EventChainChanged    EventName = "chainChanged"
)

// Events lists the full event vocabulary in subscription order.
var Events = []EventName{EventConnect, EventDisconnect, EventAccountsChanged, EventChainChanged}

// RequestArguments is the EIP-1193 request object.
type RequestArguments struct {
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

// Listener receives the raw payload of a provider event. Payload types depend on the event:
// [ConnectInfo] for connect, [*ProviderRPCError] for disconnect, []string for accountsChanged
// and a hex chain id string for chainChanged. Providers backed by a JS runtime may deliver the
// JSON encoding instead, see [DecodePayload].
type Listener func(payload any)

// Provider is the EIP-1193 capability exposed by an injected wallet. The handle is owned by the
// environment which injected it; adapters only hold a reference.
type Provider interface {
	Request(ctx context.Context, args RequestArguments) (json.RawMessage, error)
	On(event EventName, listener Listener)
}

// Injected is a provider as found in the global wallet slot, together with the identity flags
// wallets use to advertise themselves.
type Injected struct {
	Provider

	// IsMetaMask is the self-reported identity flag.
	IsMetaMask bool
	// OverrideIsMetaMask is set by wallets which spoof IsMetaMask for compatibility.
	OverrideIsMetaMask bool
	// Providers holds sibling providers when several wallets compete for the global slot.
	// It is nil when the injecting wallet does not expose the list.
	Providers []*Injected
}

// ConnectInfo is the payload of the connect event.
type ConnectInfo struct {
	ChainID string `json:"chainId" yaml:"chain_id"`
}

// Call issues method on p and decodes the JSON result into T.
func Call[T any](ctx context.Context, p Provider, method string, params ...any) (T, error) {
	var zero T

	raw, err := p.Request(ctx, RequestArguments{Method: method, Params: params})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("failed to decode %s result: %w", method, err)
	}

	return out, nil
}

// DecodePayload converts an event payload into T. Payloads already of type T are returned as
// is, JSON payloads are decoded, anything else goes through a JSON round trip.
func DecodePayload[T any](payload any) (T, error) {
	var zero T
	if v, ok := payload.(T); ok {
		return v, nil
	}

	var raw []byte
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return zero, fmt.Errorf("failed to encode payload: %w", err)
		}
		raw = b
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("failed to decode payload as %T: %w", zero, err)
	}

	return out, nil
}

// DecodeChainID converts a chainChanged payload into a hex chain id. Wallets which report the
// chain id as a number are normalised with FormatChainID.
func DecodeChainID(payload any) (string, error) {
	if id, err := DecodePayload[string](payload); err == nil {
		return id, nil
	}

	id, err := DecodePayload[uint64](payload)
	if err != nil {
		return "", fmt.Errorf("chain id is neither a string nor a number: %w", err)
	}

	return FormatChainID(id), nil
}

// DecodeConnectInfo converts a connect payload into ConnectInfo, accepting a numeric chainId
// the way DecodeChainID does.
func DecodeConnectInfo(payload any) (ConnectInfo, error) {
	if info, ok := payload.(ConnectInfo); ok {
		return info, nil
	}

	raw, err := DecodePayload[struct {
		ChainID json.RawMessage `json:"chainId"`
	}](payload)
	if err != nil {
		return ConnectInfo{}, err
	}
	if len(raw.ChainID) == 0 {
		return ConnectInfo{}, nil
	}

	id, err := DecodeChainID(raw.ChainID)
	if err != nil {
		return ConnectInfo{}, err
	}

	return ConnectInfo{ChainID: id}, nil
}
