package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cjliu20152/qiskit/internal/engine"
	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/pulse"
	"github.com/cjliu20152/qiskit/pkg/qobj"
	"github.com/cjliu20152/qiskit/pkg/simulator"
)

// rpcCall sends a JSON-RPC request to the bridge and returns the parsed
// response.
func rpcCall(t *testing.T, handler http.Handler, method string, params any, authToken string) (int, map[string]any) {
	t.Helper()
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		reqBody["params"] = params
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var result map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			t.Fatalf("unmarshal response: %v (body: %s)", err, string(body))
		}
	}
	return rr.Code, result
}

// rpcCallRaw sends a raw body to the bridge.
func rpcCallRaw(t *testing.T, handler http.Handler, body []byte, authToken string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	var result map[string]any
	if len(respBody) > 0 {
		_ = json.Unmarshal(respBody, &result)
	}
	return rr.Code, result
}

// newTestRPCHandler builds an engine-less RPC handler; only
// system.getVersion is usable.
func newTestRPCHandler(t *testing.T) (http.Handler, string, func()) {
	t.Helper()
	secret := "test-rpc-secret"
	cfg := &RPCConfig{
		Secret:    secret,
		Version:   "1.0.0",
		Commit:    "abc123",
		BuildType: "release",
	}
	rs := NewRPCServer(cfg, nil, nil, NewRPCNotifier(logger.NewNopLogger()))
	handler := requireToken(secret, rs.bridge)
	return handler, secret, func() { rs.Close() }
}

// newEngineRPCHandler builds an RPC handler over a live engine.
func newEngineRPCHandler(t *testing.T) (http.Handler, string, *engine.Engine) {
	t.Helper()
	secret := "engine-rpc-secret"
	cfg := &RPCConfig{Secret: secret, Version: "0.1.0"}
	eng := newServerEngine(t)
	rs := NewRPCServer(cfg, eng, NewPool(logger.NewNopLogger()), NewRPCNotifier(logger.NewNopLogger()))
	t.Cleanup(rs.Close)
	return requireToken(secret, rs.bridge), secret, eng
}

// rpcPiQobj assembles a calibrated pi-pulse experiment against sim1q.
func rpcPiQobj(t *testing.T, shots int) json.RawMessage {
	t.Helper()
	var cfg provider.Configuration
	found := false
	for _, c := range simulator.DeviceConfigurations() {
		if c.BackendName == "sim1q" {
			cfg, found = c, true
		}
	}
	if !found {
		t.Fatal("sim1q device missing")
	}

	sched := pulse.NewSchedule("rpc")
	w, err := pulse.Constant(100, 0.5, nil)
	if err != nil {
		t.Fatalf("waveform: %v", err)
	}
	play, err := pulse.NewPlay(w, pulse.DriveChannel(0))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := sched.Insert(0, play); err != nil {
		t.Fatalf("insert: %v", err)
	}
	acq, err := pulse.NewAcquire(100, pulse.AcquireChannel(0), pulse.MemorySlot(0))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := sched.Insert(100, acq); err != nil {
		t.Fatalf("insert: %v", err)
	}
	q, err := qobj.Assemble([]*pulse.Schedule{sched}, cfg, provider.RunOpts{Shots: shots, Seed: 11})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	blob, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return blob
}

func TestRPCSystemGetVersion(t *testing.T) {
	handler, secret, cleanup := newTestRPCHandler(t)
	defer cleanup()

	code, resp := rpcCall(t, handler, "system.getVersion", nil, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["jsonrpc"] != "2.0" {
		t.Fatalf("expected jsonrpc 2.0, got %v", resp["jsonrpc"])
	}
	if resp["id"].(float64) != 1 {
		t.Fatalf("expected id 1, got %v", resp["id"])
	}
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v", resp["result"])
	}
	if result["version"] != "1.0.0" {
		t.Fatalf("expected version 1.0.0, got %v", result["version"])
	}
	if result["commit"] != "abc123" {
		t.Fatalf("expected commit abc123, got %v", result["commit"])
	}
	if result["build_type"] != "release" {
		t.Fatalf("expected build_type release, got %v", result["build_type"])
	}
}

func TestRPCAuthRejected(t *testing.T) {
	handler, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	body := []byte(`{"jsonrpc":"2.0","method":"system.getVersion","id":1}`)

	code, _ := rpcCallRaw(t, handler, body, "")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", code)
	}

	code, _ = rpcCallRaw(t, handler, body, "wrong")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", code)
	}
}

func TestRPCBackendList(t *testing.T) {
	handler, secret, _ := newEngineRPCHandler(t)

	code, resp := rpcCall(t, handler, "backend.list", nil, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v (error: %v)", resp["result"], resp["error"])
	}
	backends, ok := result["backends"].([]any)
	if !ok || len(backends) != 2 {
		t.Fatalf("expected two backends, got %v", result["backends"])
	}
	first := backends[0].(map[string]any)
	if first["name"] != "sim1q" {
		t.Fatalf("expected sim1q first, got %v", first["name"])
	}
}

func TestRPCBackendGet(t *testing.T) {
	handler, secret, _ := newEngineRPCHandler(t)

	code, resp := rpcCall(t, handler, "backend.get", map[string]any{"name": "sim5q"}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v (error: %v)", resp["result"], resp["error"])
	}
	info := result["info"].(map[string]any)
	if info["n_qubits"].(float64) != 5 {
		t.Fatalf("expected 5 qubits, got %v", info["n_qubits"])
	}

	// Unknown backend maps to the not-found code.
	_, resp = rpcCall(t, handler, "backend.get", map[string]any{"name": "nope"}, secret)
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error, got %v", resp)
	}
	if errObj["code"].(float64) != float64(codeNotFound) {
		t.Fatalf("expected code %d, got %v", codeNotFound, errObj["code"])
	}

	// Missing name is an invalid-params error.
	_, resp = rpcCall(t, handler, "backend.get", map[string]any{}, secret)
	errObj, ok = resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error, got %v", resp)
	}
	if errObj["code"].(float64) != float64(codeInvalidParams) {
		t.Fatalf("expected code %d, got %v", codeInvalidParams, errObj["code"])
	}
}

func TestRPCJobSubmitErrors(t *testing.T) {
	handler, secret, _ := newEngineRPCHandler(t)

	// Missing qobj payload.
	_, resp := rpcCall(t, handler, "job.submit", map[string]any{"backend": "sim1q"}, secret)
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error, got %v", resp)
	}
	if errObj["code"].(float64) != float64(codeInvalidParams) {
		t.Fatalf("expected invalid params, got %v", errObj["code"])
	}

	// Unknown backend.
	_, resp = rpcCall(t, handler, "job.submit", map[string]any{
		"backend": "nope",
		"qobj":    json.RawMessage(rpcPiQobj(t, 16)),
	}, secret)
	errObj, ok = resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error, got %v", resp)
	}
	if errObj["code"].(float64) != float64(codeNotFound) {
		t.Fatalf("expected not found, got %v", errObj["code"])
	}
}

func TestRPCJobStatusUnknown(t *testing.T) {
	handler, secret, _ := newEngineRPCHandler(t)

	_, resp := rpcCall(t, handler, "job.status", map[string]any{"job_id": "missing"}, secret)
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error, got %v", resp)
	}
	if errObj["code"].(float64) != float64(codeNotFound) {
		t.Fatalf("expected not found code, got %v", errObj["code"])
	}
}

func TestRPCParseError(t *testing.T) {
	handler, secret, cleanup := newTestRPCHandler(t)
	defer cleanup()

	// The jhttp bridge rejects unparseable bodies before dispatch.
	code, _ := rpcCallRaw(t, handler, []byte("not valid json"), secret)
	if code == http.StatusOK {
		t.Fatalf("expected non-200 for parse error, got %d", code)
	}
}
