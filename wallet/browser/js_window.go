//go:build js && wasm

package browser

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"syscall/js"

	"github.com/hadron-labs/wallet-adapter-evm/wallet"
)

var _ Window = (*JSWindow)(nil)

// JSWindow is the Window of the page hosting the WebAssembly module.
type JSWindow struct {
	global js.Value
}

// NewJSWindow returns the Window backed by the JS global object.
func NewJSWindow() *JSWindow {
	return &JSWindow{global: js.Global()}
}

func (w *JSWindow) Ethereum() *wallet.Injected {
	eth := w.global.Get("ethereum")
	if !eth.Truthy() {
		return nil
	}

	return injectedFromJS(eth)
}

func (w *JSWindow) HasReactNativeWebView() bool {
	return w.global.Get("ReactNativeWebView").Truthy()
}

func (w *JSWindow) UserAgent() string {
	nav := w.global.Get("navigator")
	if !nav.Truthy() {
		return ""
	}
	ua := nav.Get("userAgent")
	if ua.Type() != js.TypeString {
		return ""
	}

	return ua.String()
}

func (w *JSWindow) Location() string {
	return w.global.Get("location").Get("href").String()
}

func (w *JSWindow) Navigate(url string) {
	w.global.Get("location").Set("href", url)
}

func (w *JSWindow) Open(url, target string) {
	w.global.Call("open", url, target)
}

func (w *JSWindow) AddEventListener(event string, fn func()) func() {
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	w.global.Call("addEventListener", event, cb, map[string]any{"once": true})

	var once sync.Once

	return func() {
		once.Do(func() {
			w.global.Call("removeEventListener", event, cb)
			cb.Release()
		})
	}
}

func injectedFromJS(v js.Value) *wallet.Injected {
	inj := &wallet.Injected{
		Provider:           &jsProvider{v: v},
		IsMetaMask:         v.Get("isMetaMask").Truthy(),
		OverrideIsMetaMask: v.Get("overrideIsMetaMask").Truthy(),
	}

	providers := v.Get("providers")
	if js.Global().Get("Array").Call("isArray", providers).Bool() {
		n := providers.Length()
		inj.Providers = make([]*wallet.Injected, 0, n)
		for i := range n {
			inj.Providers = append(inj.Providers, injectedFromJS(providers.Index(i)))
		}
	}

	return inj
}

// jsProvider forwards EIP-1193 calls to an injected JS provider object.
type jsProvider struct {
	v js.Value
}

func (p *jsProvider) Request(ctx context.Context, args wallet.RequestArguments) (json.RawMessage, error) {
	req := map[string]any{"method": args.Method}
	if len(args.Params) > 0 {
		params, err := toJS(args.Params)
		if err != nil {
			return nil, err
		}
		req["params"] = params
	}

	res, err := await(ctx, p.v.Call("request", req))
	if err != nil {
		return nil, err
	}

	return stringify(res), nil
}

func (p *jsProvider) On(event wallet.EventName, listener wallet.Listener) {
	// Released never: provider subscriptions live as long as the page.
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		var payload js.Value
		if len(args) > 0 {
			payload = args[0]
		}
		listener(stringify(payload))

		return nil
	})
	p.v.Call("on", string(event), cb)
}

func toJS(v any) (js.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return js.Undefined(), err
	}

	return js.Global().Get("JSON").Call("parse", string(b)), nil
}

func stringify(v js.Value) json.RawMessage {
	if v.IsUndefined() {
		return json.RawMessage("null")
	}
	s := js.Global().Get("JSON").Call("stringify", v)
	if s.Type() != js.TypeString {
		return json.RawMessage("null")
	}

	return json.RawMessage(s.String())
}

func await(ctx context.Context, promise js.Value) (js.Value, error) {
	type outcome struct {
		v   js.Value
		err error
	}
	ch := make(chan outcome, 1)

	onResolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		var v js.Value
		if len(args) > 0 {
			v = args[0]
		}
		ch <- outcome{v: v}

		return nil
	})
	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		var v js.Value
		if len(args) > 0 {
			v = args[0]
		}
		ch <- outcome{err: errorFromJS(v)}

		return nil
	})
	promise.Call("then", onResolve, onReject)

	select {
	case o := <-ch:
		onResolve.Release()
		onReject.Release()

		return o.v, o.err
	case <-ctx.Done():
		// The promise may still settle, so the callbacks must stay alive.
		return js.Undefined(), ctx.Err()
	}
}

func errorFromJS(v js.Value) error {
	if v.Type() == js.TypeObject && v.Get("code").Type() == js.TypeNumber {
		perr := &wallet.ProviderRPCError{
			Code:    v.Get("code").Int(),
			Message: v.Get("message").String(),
		}
		if data := v.Get("data"); !data.IsUndefined() {
			perr.Data = stringify(data)
		}

		return perr
	}
	if v.Type() == js.TypeObject && v.Get("message").Type() == js.TypeString {
		return errors.New(v.Get("message").String())
	}

	return errors.New(v.String())
}
