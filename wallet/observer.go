package wallet

import (
	"slices"
	"sync"

	"github.com/segmentio/ksuid"
)

// Observer receives the notifications an adapter relays to the application.
type Observer interface {
	ReadyStateChanged(state ReadyState)
	Connect(info ConnectInfo)
	Disconnect(err *ProviderRPCError)
	AccountsChanged(accounts []string)
	ChainChanged(chainID string)
}

var _ Observer = ObserverFuncs{}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	OnReadyStateChanged func(ReadyState)
	OnConnect           func(ConnectInfo)
	OnDisconnect        func(*ProviderRPCError)
	OnAccountsChanged   func([]string)
	OnChainChanged      func(string)
}

func (f ObserverFuncs) ReadyStateChanged(state ReadyState) {
	if f.OnReadyStateChanged != nil {
		f.OnReadyStateChanged(state)
	}
}

func (f ObserverFuncs) Connect(info ConnectInfo) {
	if f.OnConnect != nil {
		f.OnConnect(info)
	}
}

func (f ObserverFuncs) Disconnect(err *ProviderRPCError) {
	if f.OnDisconnect != nil {
		f.OnDisconnect(err)
	}
}

func (f ObserverFuncs) AccountsChanged(accounts []string) {
	if f.OnAccountsChanged != nil {
		f.OnAccountsChanged(accounts)
	}
}

func (f ObserverFuncs) ChainChanged(chainID string) {
	if f.OnChainChanged != nil {
		f.OnChainChanged(chainID)
	}
}

// SubscriptionID identifies an Observer registered on an Emitter.
type SubscriptionID string

type subscription struct {
	id       SubscriptionID
	observer Observer
}

// Emitter fans notifications out to the registered observers in subscription order. The zero
// value is ready to use and safe for concurrent use.
type Emitter struct {
	mu   sync.RWMutex
	subs []subscription
}

// Subscribe registers o and returns the id to pass to Unsubscribe.
func (e *Emitter) Subscribe(o Observer) SubscriptionID {
	id := SubscriptionID(ksuid.New().String())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, subscription{id: id, observer: o})

	return id
}

// Unsubscribe removes the observer registered under id and reports whether it was present.
func (e *Emitter) Unsubscribe(id SubscriptionID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := slices.IndexFunc(e.subs, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return false
	}
	e.subs = slices.Delete(e.subs, i, i+1)

	return true
}

// Len returns the number of registered observers.
func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.subs)
}

// observers snapshots the registered observers so callbacks run without the lock held.
func (e *Emitter) observers() []Observer {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Observer, 0, len(e.subs))
	for _, s := range e.subs {
		out = append(out, s.observer)
	}

	return out
}

func (e *Emitter) EmitReadyStateChanged(state ReadyState) {
	for _, o := range e.observers() {
		o.ReadyStateChanged(state)
	}
}

func (e *Emitter) EmitConnect(info ConnectInfo) {
	for _, o := range e.observers() {
		o.Connect(info)
	}
}

func (e *Emitter) EmitDisconnect(err *ProviderRPCError) {
	for _, o := range e.observers() {
		o.Disconnect(err)
	}
}

func (e *Emitter) EmitAccountsChanged(accounts []string) {
	for _, o := range e.observers() {
		o.AccountsChanged(accounts)
	}
}

func (e *Emitter) EmitChainChanged(chainID string) {
	for _, o := range e.observers() {
		o.ChainChanged(chainID)
	}
}
