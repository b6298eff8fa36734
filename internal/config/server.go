package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gaspardpetit/promptrelay/internal/catalog"
	"github.com/gaspardpetit/promptrelay/internal/relay"
)

// Request timeout bounds enforced by Validate.
const (
	MinRequestTimeout = 60 * time.Second
	MaxRequestTimeout = 90 * time.Second
)

// UpstreamConfig describes the chat-completion provider.
type UpstreamConfig struct {
	URL          string         `yaml:"url"`
	KeyEnv       string         `yaml:"key_env"`
	KeyPrefix    string         `yaml:"key_prefix"`
	KeyMinLength int            `yaml:"key_min_length"`
	Referer      string         `yaml:"referer"`
	Title        string         `yaml:"title"`
	Sampling     relay.Sampling `yaml:"sampling"`

	// APIKey is read from the variable named by KeyEnv and never from the file.
	APIKey string `yaml:"-"`
}

// ServerConfig holds configuration for the promptrelay server.
type ServerConfig struct {
	Port           int            `yaml:"port"`
	MetricsAddr    string         `yaml:"metrics_addr"`
	LogLevel       string         `yaml:"log_level"`
	LogFormat      string         `yaml:"log_format"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	DrainTimeout   time.Duration  `yaml:"drain_timeout"`
	MCPEnabled     bool           `yaml:"mcp_enabled"`
	Upstream       UpstreamConfig `yaml:"upstream"`

	ConfigFile  string `yaml:"-"`
	EnvFile     string `yaml:"-"`
	ShowVersion bool   `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults.
func (c *ServerConfig) SetDefaults() {
	c.Port = 8080
	c.MetricsAddr = ""
	c.LogLevel = "info"
	c.LogFormat = "console"
	c.AllowedOrigins = []string{"*"}
	c.RequestTimeout = MinRequestTimeout
	c.DrainTimeout = 30 * time.Second
	c.MCPEnabled = true
	c.ConfigFile = DefaultConfigPath("server.yaml")
	c.EnvFile = ".env"
	c.Upstream = UpstreamConfig{
		URL:          relay.DefaultEndpoint,
		KeyEnv:       "DEEPSEEK_API_KEY",
		KeyPrefix:    "sk-",
		KeyMinLength: 20,
		Sampling:     relay.DefaultSampling(),
	}
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *ServerConfig) ApplyEnv() {
	c.ConfigFile = GetEnv("CONFIG_FILE", c.ConfigFile)
	c.LogLevel = GetEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = GetEnv("LOG_FORMAT", c.LogFormat)
	c.Port = envInt("PORT", c.Port)
	if v := GetEnv("METRICS_PORT", ""); v != "" {
		if strings.Contains(v, ":") {
			c.MetricsAddr = v
		} else {
			c.MetricsAddr = ":" + v
		}
	}
	if v := GetEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	c.RequestTimeout = envSeconds("REQUEST_TIMEOUT", c.RequestTimeout)
	if v := GetEnv("DRAIN_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DrainTimeout = d
		}
	}
	c.MCPEnabled = envBool("MCP_ENABLED", c.MCPEnabled)
	c.Upstream.URL = GetEnv("UPSTREAM_URL", c.Upstream.URL)
	c.Upstream.KeyEnv = GetEnv("UPSTREAM_KEY_ENV", c.Upstream.KeyEnv)
	c.Upstream.KeyPrefix = GetEnv("UPSTREAM_KEY_PREFIX", c.Upstream.KeyPrefix)
	c.Upstream.Referer = GetEnv("UPSTREAM_REFERER", c.Upstream.Referer)
	c.Upstream.Title = GetEnv("UPSTREAM_TITLE", c.Upstream.Title)
}

// BindFlags binds command line flags to fs using the current values as defaults.
func (c *ServerConfig) BindFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.ShowVersion, "version", false, "print version and exit")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	fs.StringVar(&c.EnvFile, "env-file", c.EnvFile, "dotenv file loaded before reading the environment")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log output format (console, json)")
	fs.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	fs.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port; defaults to the value of --port")
	fs.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
	fs.Func("request-timeout", "upstream request timeout in seconds (clamped to 60-90)", func(v string) error {
		d, err := parseSeconds(v)
		if err != nil {
			return err
		}
		c.RequestTimeout = d
		return nil
	})
	fs.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "time to wait for in-flight requests on shutdown (0 to exit immediately)")
	fs.BoolVar(&c.MCPEnabled, "mcp", c.MCPEnabled, "serve MCP tools on /mcp")
	fs.StringVar(&c.Upstream.URL, "upstream-url", c.Upstream.URL, "chat-completion endpoint URL")
	fs.StringVar(&c.Upstream.KeyEnv, "upstream-key-env", c.Upstream.KeyEnv, "name of the environment variable holding the upstream API key")
	fs.StringVar(&c.Upstream.KeyPrefix, "upstream-key-prefix", c.Upstream.KeyPrefix, "expected API key prefix reported by /api/health")
	fs.StringVar(&c.Upstream.Referer, "upstream-referer", c.Upstream.Referer, "optional HTTP-Referer header sent upstream")
	fs.StringVar(&c.Upstream.Title, "upstream-title", c.Upstream.Title, "optional X-Title header sent upstream")
}

// LoadFile populates the config from a YAML file.
func (c *ServerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration and clamps the request timeout into
// [MinRequestTimeout, MaxRequestTimeout]. It returns a note for every
// adjusted value.
func (c *ServerConfig) Validate() ([]string, error) {
	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Upstream.URL == "" {
		return nil, errors.New("upstream url is required")
	}
	if c.Upstream.KeyEnv == "" {
		return nil, errors.New("upstream key env is required")
	}
	var notes []string
	switch {
	case c.RequestTimeout < MinRequestTimeout:
		notes = append(notes, fmt.Sprintf("request timeout %s raised to %s", c.RequestTimeout, MinRequestTimeout))
		c.RequestTimeout = MinRequestTimeout
	case c.RequestTimeout > MaxRequestTimeout:
		notes = append(notes, fmt.Sprintf("request timeout %s lowered to %s", c.RequestTimeout, MaxRequestTimeout))
		c.RequestTimeout = MaxRequestTimeout
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = fmt.Sprintf(":%d", c.Port)
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	return notes, nil
}

// MetricsOnMainPort reports whether /metrics is served by the API listener.
func (c *ServerConfig) MetricsOnMainPort() bool {
	return c.MetricsAddr == "" || c.MetricsAddr == fmt.Sprintf(":%d", c.Port)
}

// RelayConfig builds the immutable relay configuration.
func (c *ServerConfig) RelayConfig() relay.Config {
	return relay.Config{
		APIKey:       c.Upstream.APIKey,
		KeyPrefix:    c.Upstream.KeyPrefix,
		KeyMinLength: c.Upstream.KeyMinLength,
		Endpoint:     c.Upstream.URL,
		Timeout:      c.RequestTimeout,
		Sampling:     c.Upstream.Sampling,
		Referer:      c.Upstream.Referer,
		Title:        c.Upstream.Title,
		Catalog:      catalog.Builtin(),
	}
}

// Load builds the configuration from defaults, a dotenv file, the YAML config
// file, the environment and finally the command line, later sources winning.
func Load(args []string) (ServerConfig, []string, error) {
	var c ServerConfig
	c.SetDefaults()
	c.EnvFile = GetEnv("ENV_FILE", lookupFlag(args, "env-file", c.EnvFile))
	if err := LoadDotEnv(c.EnvFile); err != nil {
		return c, nil, fmt.Errorf("load %s: %w", c.EnvFile, err)
	}
	c.ApplyEnv()
	c.ConfigFile = lookupFlag(args, "config", c.ConfigFile)
	if c.ConfigFile != "" {
		if err := c.LoadFile(c.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, nil, err
		}
		// environment overrides the file
		c.ApplyEnv()
	}

	fs := flag.NewFlagSet("promptrelay", flag.ContinueOnError)
	c.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return c, nil, err
	}
	c.Upstream.APIKey = strings.TrimSpace(os.Getenv(c.Upstream.KeyEnv))
	notes, err := c.Validate()
	return c, notes, err
}

// lookupFlag scans args for -name/--name in either "-name value" or
// "-name=value" form, returning def when absent.
func lookupFlag(args []string, name, def string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		trimmed := strings.TrimLeft(a, "-")
		if trimmed == a {
			continue
		}
		if trimmed == name && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(trimmed, name+"="); ok {
			return v
		}
	}
	return def
}
