// Package relay forwards prompts to an upstream chat-completion API.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/gaspardpetit/promptrelay/core/secret"
	"github.com/gaspardpetit/promptrelay/internal/catalog"
	"github.com/gaspardpetit/promptrelay/internal/logx"
	"github.com/gaspardpetit/promptrelay/internal/metrics"
)

// Config is the immutable configuration of a Relay. It is read once at
// process start and never mutated afterwards.
type Config struct {
	APIKey       string
	KeyPrefix    string
	KeyMinLength int
	Endpoint     string
	Timeout      time.Duration
	SystemPrompt string
	Sampling     Sampling
	// Referer and Title are sent as HTTP-Referer and X-Title when set.
	Referer string
	Title   string
	Catalog *catalog.Catalog
	// Transport overrides the HTTP transport; nil uses the default.
	Transport http.RoundTripper
}

// Relay validates requests, calls the upstream and translates failures.
// It holds no mutable state and is safe for concurrent use.
type Relay struct {
	cfg    Config
	client *resty.Client
}

// New constructs a Relay. Zero values in cfg fall back to defaults, except
// Sampling which is used as given.
func New(cfg Config) *Relay {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = SystemInstruction
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Builtin()
	}
	return &Relay{cfg: cfg, client: newUpstreamClient(cfg.Timeout, cfg.Transport)}
}

// Models returns the model table verbatim.
func (r *Relay) Models() []catalog.ModelDescriptor { return r.cfg.Catalog.List() }

// DefaultModel returns the descriptor used for empty or unknown keys.
func (r *Relay) DefaultModel() catalog.ModelDescriptor { return r.cfg.Catalog.Default() }

// Generate forwards req upstream and returns the augmented upstream JSON.
// Every failure is returned as *Error.
func (r *Relay) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	start := time.Now()
	model, known := r.cfg.Catalog.Resolve(req.Model)
	res, rerr := r.generate(ctx, req, model, known)
	outcome := "success"
	if rerr != nil {
		outcome = string(rerr.Kind)
	}
	metrics.RecordGenerate(model.Key, outcome)
	if rerr != nil {
		ev := logx.Log.Warn()
		if rerr.Kind == KindUnknown {
			ev = logx.Log.Error()
		}
		ev.Err(rerr.Err).Str("status", string(rerr.Kind)).Str("model_key", model.Key).Dur("duration", time.Since(start)).Msg(rerr.Message)
		return nil, rerr
	}
	return res, nil
}

func (r *Relay) generate(ctx context.Context, req GenerationRequest, model catalog.ModelDescriptor, known bool) (*Result, *Error) {
	if r.cfg.APIKey == "" {
		return nil, newError(KindConfiguration, nil, "upstream API key not configured")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, newError(KindInvalidRequest, nil, "prompt is required")
	}

	if req.Model != "" && !known {
		logx.Log.Debug().Str("requested", req.Model).Str("model_key", model.Key).Msg("unknown model key; using default")
	}
	upstreamID := uuid.NewString()
	logx.Log.Info().Str("upstream_request_id", upstreamID).Str("model_key", model.Key).Str("model", model.UpstreamID).Int("prompt_len", len(req.Prompt)).Msg("generate")

	body, err := encode(buildChatRequest(model.UpstreamID, r.cfg.SystemPrompt, req.Prompt, r.cfg.Sampling))
	if err != nil {
		return nil, newError(KindUnknown, err, "encode upstream request")
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	call := r.client.R().
		SetContext(ctx).
		SetAuthToken(r.cfg.APIKey).
		SetHeader("X-Request-Id", upstreamID).
		SetBody(body)
	if r.cfg.Referer != "" {
		call.SetHeader("HTTP-Referer", r.cfg.Referer)
	}
	if r.cfg.Title != "" {
		call.SetHeader("X-Title", r.cfg.Title)
	}
	start := time.Now()
	resp, err := call.Post(r.cfg.Endpoint)
	metrics.ObserveUpstreamDuration(model.Key, time.Since(start))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	status := resp.StatusCode()
	raw := resp.Body()
	if !resp.IsSuccess() {
		e := newError(KindHTTP, nil, "HTTP %d: %s", status, truncate(raw, maxErrorBody))
		e.UpstreamStatus = status
		e.UpstreamBody = truncate(raw, maxErrorBody)
		return nil, e
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, newError(KindParse, err, "malformed upstream response")
	}
	if obj == nil {
		return nil, newError(KindParse, nil, "upstream response is not a JSON object")
	}
	if apiErr, ok := obj["error"]; ok && string(apiErr) != "null" {
		e := newError(KindHTTP, nil, "API Error: %s", upstreamErrorMessage(apiErr))
		e.UpstreamStatus = status
		e.UpstreamBody = truncate(raw, maxErrorBody)
		return nil, e
	}

	for k, v := range map[string]string{
		FieldSelectedModelName: model.Name,
		FieldSelectedModelID:   model.UpstreamID,
		FieldModelDescription:  model.Description,
	} {
		b, _ := json.Marshal(v)
		obj[k] = b
	}
	out, err := encode(obj)
	if err != nil {
		return nil, newError(KindUnknown, err, "encode response")
	}
	logx.Log.Info().Str("upstream_request_id", upstreamID).Str("model_key", model.Key).Int("upstream_status", status).Dur("duration", time.Since(start)).Msg("generate complete")
	return &Result{Model: model, UpstreamStatus: status, Body: out}, nil
}

// upstreamErrorMessage extracts error.message when present, or returns the
// raw JSON of the error member.
func upstreamErrorMessage(raw json.RawMessage) string {
	var v struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &v); err == nil && v.Message != "" {
		return v.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return string(raw)
}

// HealthStatus is a static snapshot of the relay configuration.
type HealthStatus struct {
	Status         string `json:"status"`
	APIKeySet      bool   `json:"api_key_set"`
	APIKeyFormatOK bool   `json:"api_key_format_ok"`
	DefaultModel   string `json:"default_model"`
	UpstreamHost   string `json:"upstream_host"`
}

// Health reports configuration state without any network call.
func (r *Relay) Health() HealthStatus {
	host := r.cfg.Endpoint
	if u, err := url.Parse(r.cfg.Endpoint); err == nil && u.Host != "" {
		host = u.Host
	}
	return HealthStatus{
		Status:         "healthy",
		APIKeySet:      r.cfg.APIKey != "",
		APIKeyFormatOK: secret.ShapeOK(r.cfg.APIKey, r.cfg.KeyPrefix, r.cfg.KeyMinLength),
		DefaultModel:   r.cfg.Catalog.Default().Key,
		UpstreamHost:   host,
	}
}
