package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gaspardpetit/promptrelay/internal/relay"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "ENV_FILE", "LOG_LEVEL", "LOG_FORMAT", "PORT", "METRICS_PORT", "ALLOWED_ORIGINS",
		"REQUEST_TIMEOUT", "DRAIN_TIMEOUT", "MCP_ENABLED", "UPSTREAM_URL", "UPSTREAM_KEY_ENV", "UPSTREAM_KEY_PREFIX",
		"UPSTREAM_REFERER", "UPSTREAM_TITLE", "DEEPSEEK_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg, notes, err := Load([]string{"-config", filepath.Join(dir, "missing.yaml"), "-env-file", filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("unexpected notes %v", notes)
	}
	if cfg.Port != 8080 || cfg.MetricsAddr != ":8080" || !cfg.MetricsOnMainPort() {
		t.Fatalf("unexpected ports %d %q", cfg.Port, cfg.MetricsAddr)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Fatalf("timeout %s", cfg.RequestTimeout)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("origins %v", cfg.AllowedOrigins)
	}
	if cfg.Upstream.URL != relay.DefaultEndpoint || cfg.Upstream.KeyEnv != "DEEPSEEK_API_KEY" {
		t.Fatalf("upstream %+v", cfg.Upstream)
	}
	if cfg.Upstream.APIKey != "" {
		t.Fatalf("expected no key")
	}
	if cfg.Upstream.Sampling != relay.DefaultSampling() {
		t.Fatalf("sampling %+v", cfg.Upstream.Sampling)
	}
}

func TestLoadLayering(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "server.yaml")
	yml := `port: 9000
request_timeout: 75s
allowed_origins: ["https://a.example"]
upstream:
  url: https://openrouter.ai/api/v1/chat/completions
  key_env: OPENROUTER_API_KEY
  key_prefix: sk-or-
  title: AI Research Assistant
  sampling:
    max_tokens: 2000
`
	if err := os.WriteFile(file, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("OPENROUTER_API_KEY=sk-or-from-dotenv-0123456789\nPORT=9100\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("OPENROUTER_API_KEY")
		_ = os.Unsetenv("PORT")
	})

	cfg, _, err := Load([]string{"-config", file, "--env-file=" + envFile, "-port", "9200"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9200 {
		t.Fatalf("flag should win, got port %d", cfg.Port)
	}
	if cfg.RequestTimeout != 75*time.Second {
		t.Fatalf("timeout %s", cfg.RequestTimeout)
	}
	if cfg.Upstream.APIKey != "sk-or-from-dotenv-0123456789" {
		t.Fatalf("key %q", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.Sampling.MaxTokens != 2000 || cfg.Upstream.Sampling.TopP != 0.9 {
		t.Fatalf("sampling %+v", cfg.Upstream.Sampling)
	}
	if cfg.Upstream.Title != "AI Research Assistant" || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Fatalf("file values not applied: %+v", cfg)
	}

	rc := cfg.RelayConfig()
	if rc.APIKey != cfg.Upstream.APIKey || rc.Timeout != 75*time.Second || rc.Catalog == nil {
		t.Fatalf("relay config %+v", rc)
	}
}

func TestValidateClampsTimeout(t *testing.T) {
	var c ServerConfig
	c.SetDefaults()
	c.RequestTimeout = 5 * time.Second
	notes, err := c.Validate()
	if err != nil || len(notes) != 1 || c.RequestTimeout != MinRequestTimeout {
		t.Fatalf("low clamp: %v %v %s", notes, err, c.RequestTimeout)
	}
	c.RequestTimeout = 10 * time.Minute
	notes, err = c.Validate()
	if err != nil || len(notes) != 1 || c.RequestTimeout != MaxRequestTimeout {
		t.Fatalf("high clamp: %v %v %s", notes, err, c.RequestTimeout)
	}
	c.Port = 0
	if _, err := c.Validate(); err == nil {
		t.Fatalf("expected port error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "80")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MCP_ENABLED", "false")
	var c ServerConfig
	c.SetDefaults()
	c.ApplyEnv()
	if c.MetricsAddr != ":9090" {
		t.Fatalf("metrics addr %q", c.MetricsAddr)
	}
	if c.RequestTimeout != 80*time.Second {
		t.Fatalf("timeout %s", c.RequestTimeout)
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins %v", c.AllowedOrigins)
	}
	if c.MCPEnabled {
		t.Fatalf("mcp should be disabled")
	}
}

func TestLookupFlag(t *testing.T) {
	args := []string{"-port", "1", "--config=/tmp/x.yaml", "-env-file", "a.env"}
	if v := lookupFlag(args, "config", "def"); v != "/tmp/x.yaml" {
		t.Fatalf("config %q", v)
	}
	if v := lookupFlag(args, "env-file", "def"); v != "a.env" {
		t.Fatalf("env-file %q", v)
	}
	if v := lookupFlag(args, "missing", "def"); v != "def" {
		t.Fatalf("missing %q", v)
	}
}

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		goos, home, programData, want string
	}{
		{"linux", "/home/u", "", filepath.Join("/etc", "promptrelay", "server.yaml")},
		{"darwin", "/Users/u", "", filepath.Join("/Users/u", "Library", "Application Support", "promptrelay", "server.yaml")},
		{"windows", "", "", filepath.Join("C:/ProgramData", "promptrelay", "server.yaml")},
	}
	for _, tt := range tests {
		if got := ResolveConfigPath(tt.goos, tt.home, tt.programData, "server.yaml"); got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.goos, got, tt.want)
		}
	}
}
