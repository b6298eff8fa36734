package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gaspardpetit/promptrelay/internal/catalog"
	"github.com/gaspardpetit/promptrelay/internal/config"
	"github.com/gaspardpetit/promptrelay/internal/relay"
)

const testKey = "sk-test-0123456789abcdef"

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:           8080,
		MetricsAddr:    ":8080",
		AllowedOrigins: []string{"*"},
		RequestTimeout: time.Second,
		MCPEnabled:     true,
	}
}

func newRelay(t *testing.T, key string) *relay.Relay {
	t.Helper()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":"hi"}}]}`)
	}))
	t.Cleanup(up.Close)
	return relay.New(relay.Config{
		APIKey:       key,
		KeyPrefix:    "sk-",
		KeyMinLength: 20,
		Endpoint:     up.URL,
		Timeout:      time.Second,
		Catalog:      catalog.Builtin(),
	})
}

func startServer(t *testing.T, cfg config.ServerConfig, key string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(cfg, newRelay(t, key), "test", nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestMetricsEndpointDefaultPort(t *testing.T) {
	ts := startServer(t, testConfig(), testKey)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpointSeparatePort(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsAddr = ":9090"
	ts := startServer(t, cfg, testKey)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestIndexPage(t *testing.T) {
	ts := startServer(t, testConfig(), testKey)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected text/html content type, got %s", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/api/generate") {
		t.Fatalf("frontend does not call /api/generate")
	}
}

func TestHealthz(t *testing.T) {
	ts := startServer(t, testConfig(), testKey)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected healthz %d %q", resp.StatusCode, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := startServer(t, testConfig(), testKey)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/generate", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	_ = resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected open CORS, got %q", got)
	}
}

func TestGenerateThroughRouter(t *testing.T) {
	ts := startServer(t, testConfig(), testKey)

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(`{"prompt":"hello","model":"rvm"}`))
	if err != nil {
		t.Fatalf("POST /api/generate: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["selected_model_name"] != "RVM 1.0" || out["selected_model_id"] != "deepseek-reasoner" {
		t.Fatalf("missing bookkeeping fields: %v", out)
	}
	if out["id"] != "chatcmpl-1" {
		t.Fatalf("upstream fields not preserved: %v", out)
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	ts := startServer(t, testConfig(), "")

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(`{"prompt":"hello"}`))
	if err != nil {
		t.Fatalf("POST /api/generate: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out["status"] != string(relay.KindConfiguration) {
		t.Fatalf("unexpected status %v", out["status"])
	}
}

func TestDisableMCP(t *testing.T) {
	cfg := testConfig()
	cfg.MCPEnabled = false
	ts := startServer(t, cfg, testKey)

	resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST /mcp: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMetricsHandler(t *testing.T) {
	ts := httptest.NewServer(MetricsHandler(prometheus.NewRegistry()))
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
