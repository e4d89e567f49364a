package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

func TestMemoryWindow_Defaults(t *testing.T) {
	t.Parallel()

	w := NewMemoryWindow()

	assert.Nil(t, w.Ethereum())
	assert.False(t, w.HasReactNativeWebView())
	assert.Empty(t, w.UserAgent())
	assert.Equal(t, "https://localhost/", w.Location())
	assert.Empty(t, w.Navigations())
}

func TestMemoryWindow_Options(t *testing.T) {
	t.Parallel()

	injected := &wallet.Injected{IsMetaMask: true}
	w := NewMemoryWindow(
		WithUserAgent("Mozilla/5.0 MetaMaskMobile"),
		WithLocation("https://dapp.example/swap"),
		WithEthereum(injected),
		WithReactNativeWebView(),
	)

	assert.Same(t, injected, w.Ethereum())
	assert.True(t, w.HasReactNativeWebView())
	assert.Equal(t, "Mozilla/5.0 MetaMaskMobile", w.UserAgent())
	assert.Equal(t, "https://dapp.example/swap", w.Location())
}

func TestMemoryWindow_Navigation(t *testing.T) {
	t.Parallel()

	w := NewMemoryWindow()

	w.Open("https://metamask.app.link/dapp/localhost/", "_blank")
	assert.Equal(t, "https://localhost/", w.Location())

	w.Navigate("dapp://localhost/")
	assert.Equal(t, "dapp://localhost/", w.Location())

	assert.Equal(t, []Navigation{
		{URL: "https://metamask.app.link/dapp/localhost/", Target: "_blank"},
		{URL: "dapp://localhost/"},
	}, w.Navigations())
}

func TestMemoryWindow_EventListeners(t *testing.T) {
	t.Parallel()

	w := NewMemoryWindow()

	var calls int
	remove := w.AddEventListener(EthereumInitializedEvent, func() { calls++ })
	assert.Equal(t, 1, w.ListenerCount(EthereumInitializedEvent))

	w.Dispatch("unrelated")
	assert.Equal(t, 0, calls)

	w.Dispatch(EthereumInitializedEvent)
	assert.Equal(t, 1, calls)

	remove()
	remove()
	assert.Equal(t, 0, w.ListenerCount(EthereumInitializedEvent))
	assert.Equal(t, 1, w.ListenersRegistered(EthereumInitializedEvent))

	w.Dispatch(EthereumInitializedEvent)
	assert.Equal(t, 1, calls)
}

func TestMemoryWindow_ListenerRemovesItselfDuringDispatch(t *testing.T) {
	t.Parallel()

	w := NewMemoryWindow()

	var (
		calls  int
		remove func()
	)
	remove = w.AddEventListener(EthereumInitializedEvent, func() {
		calls++
		remove()
		w.AddEventListener("other", func() {})
	})
	assert.Equal(t, 0, calls)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Dispatch(EthereumInitializedEvent)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "dispatch deadlocked")
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, w.ListenerCount(EthereumInitializedEvent))
	assert.Equal(t, 1, w.ListenerCount("other"))
}

func TestMemoryWindow_InjectAfter(t *testing.T) {
	t.Parallel()

	w := NewMemoryWindow()
	injected := &wallet.Injected{IsMetaMask: true}

	fired := make(chan struct{})
	w.AddEventListener(EthereumInitializedEvent, func() { close(fired) })

	w.InjectAfter(10*time.Millisecond, injected)

	select {
	case <-fired:
	case <-time.After(time.Second):
		require.FailNow(t, "injection event was not dispatched")
	}
	assert.Same(t, injected, w.Ethereum())
}
