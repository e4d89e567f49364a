package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// fakeNode records the calls it receives and answers them from a method table. Unknown
// methods are answered with a method not found error.
type fakeNode struct {
	mu      sync.Mutex
	calls   []rpcRequest
	results map[string]any
	errors  map[string]rpcError
}

func (n *fakeNode) methods() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, 0, len(n.calls))
	for _, c := range n.calls {
		out = append(out, c.Method)
	}

	return out
}

func (n *fakeNode) lastCall() rpcRequest {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.calls[len(n.calls)-1]
}

// newFakeRPCServer returns a JSON-RPC server backed by node.
//
// When the test is done, the server is closed automatically.
func newFakeRPCServer(t *testing.T, node *fakeNode) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		node.mu.Lock()
		node.calls = append(node.calls, req)
		result, hasResult := node.results[req.Method]
		rerr, hasErr := node.errors[req.Method]
		node.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch {
		case hasErr:
			resp["error"] = rerr
		case hasResult:
			resp["result"] = result
		default:
			resp["error"] = rpcError{Code: -32601, Message: "the method " + req.Method + " does not exist/is not available"}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	srv := httptest.NewServer(handler)

	t.Cleanup(func() {
		srv.Close()
	})

	return srv
}
