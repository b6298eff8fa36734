package relay

import "fmt"

// Kind classifies a failed generation.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindConfiguration  Kind = "configuration_error"
	KindTimeout        Kind = "timeout"
	KindHTTP           Kind = "http_error"
	KindNetwork        Kind = "network_error"
	KindParse          Kind = "parse_error"
	KindUnknown        Kind = "unknown_error"
)

// Error is returned by Relay.Generate for every failure.
type Error struct {
	Kind    Kind
	Message string
	// UpstreamStatus and UpstreamBody are set for KindHTTP.
	UpstreamStatus int
	UpstreamBody   string
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
