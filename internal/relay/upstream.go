package relay

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gaspardpetit/promptrelay/internal/logx"
)

// DefaultEndpoint is the chat-completion endpoint used when none is configured.
const DefaultEndpoint = "https://api.deepseek.com/chat/completions"

// maxErrorBody caps how much of an upstream error body is echoed back.
const maxErrorBody = 64 << 10

func newUpstreamClient(timeout time.Duration, transport http.RoundTripper) *resty.Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if transport != nil {
		c.SetTransport(transport)
	}
	return c
}

// restyLogger routes resty's internal messages through logx.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	logx.Log.Error().Str("component", "upstream").Msgf(format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	logx.Log.Warn().Str("component", "upstream").Msgf(format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	logx.Log.Debug().Str("component", "upstream").Msgf(format, v...)
}

// classifyTransportError maps an error from the upstream round trip to a Kind.
func classifyTransportError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(KindTimeout, err, "upstream request timed out")
	case errors.As(err, &netErr) && netErr.Timeout():
		return newError(KindTimeout, err, "upstream request timed out")
	case errors.Is(err, context.Canceled):
		return newError(KindUnknown, err, "request canceled")
	}
	var urlErr *url.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return newError(KindNetwork, err, "upstream unreachable")
	}
	return newError(KindUnknown, err, "unexpected upstream failure")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
