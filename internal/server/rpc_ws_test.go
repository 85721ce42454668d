package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"

	"github.com/cjliu20152/qiskit/pkg/logger"
)

// newTestWebServerWithRPC creates a WebServer with RPC enabled behind
// an httptest server.
func newTestWebServerWithRPC(t *testing.T) (string, string, func()) {
	t.Helper()
	secret := "ws-test-secret"
	pool := NewPool(logger.NewNopLogger())
	rpcCfg := &RPCConfig{
		Secret:  secret,
		Version: "1.0.0",
		Commit:  "abc123",
	}
	ws := NewWebServer(logger.NewNopLogger(), nil, pool, 0, rpcCfg)
	srv := httptest.NewServer(ws.handler())
	cleanup := func() {
		srv.Close()
		if ws.rpc != nil {
			ws.rpc.Close()
		}
	}
	return srv.URL, secret, cleanup
}

func TestWebSocketEndpoint_AuthRequired(t *testing.T) {
	srvURL, _, cleanup := newTestWebServerWithRPC(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "/jsonrpc/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, resp, err := cws.Dial(ctx, wsURL, nil)
	if err == nil {
		t.Fatal("expected error for unauthorized WebSocket connection")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWebSocketEndpoint_WrongToken(t *testing.T) {
	srvURL, _, cleanup := newTestWebServerWithRPC(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "/jsonrpc/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, resp, err := cws.Dial(ctx, wsURL, &cws.DialOptions{
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer wrong-token"},
		},
	})
	if err == nil {
		t.Fatal("expected error for wrong token")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWebSocketEndpoint_Connect(t *testing.T) {
	srvURL, secret, cleanup := newTestWebServerWithRPC(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "/jsonrpc/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := cws.Dial(ctx, wsURL, &cws.DialOptions{
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer " + secret},
		},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "system.getVersion",
		"id":      1,
	}
	data, _ := json.Marshal(req)
	if err := conn.Write(ctx, cws.MessageText, data); err != nil {
		t.Fatalf("WebSocket write failed: %v", err)
	}

	_, respData, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("WebSocket read failed: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(respData, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp["jsonrpc"] != "2.0" {
		t.Fatalf("expected jsonrpc 2.0, got %v", resp["jsonrpc"])
	}
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v (error: %v)", resp["result"], resp["error"])
	}
	if result["version"] != "1.0.0" {
		t.Fatalf("expected version 1.0.0, got %v", result["version"])
	}
}

func TestWebSocketEndpoint_MultipleRequests(t *testing.T) {
	srvURL, secret, cleanup := newTestWebServerWithRPC(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "/jsonrpc/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := cws.Dial(ctx, wsURL, &cws.DialOptions{
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer " + secret},
		},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	for i := 1; i <= 3; i++ {
		req := map[string]any{
			"jsonrpc": "2.0",
			"method":  "system.getVersion",
			"id":      i,
		}
		data, _ := json.Marshal(req)
		if err := conn.Write(ctx, cws.MessageText, data); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}

		_, respData, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		var resp map[string]any
		if err := json.Unmarshal(respData, &resp); err != nil {
			t.Fatalf("unmarshal %d: %v", i, err)
		}
		if resp["id"].(float64) != float64(i) {
			t.Fatalf("expected id %d, got %v", i, resp["id"])
		}
	}
}
