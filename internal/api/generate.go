package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gaspardpetit/promptrelay/internal/logx"
	"github.com/gaspardpetit/promptrelay/internal/relay"
)

// maxRequestBody bounds the size of a generate request body.
const maxRequestBody = 1 << 20

// ErrorResponse is the body returned for every failed generation.
type ErrorResponse struct {
	Error          string `json:"error"`
	Status         string `json:"status"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

// PostGenerate handles POST /api/generate.
func (a *API) PostGenerate(w http.ResponseWriter, r *http.Request) {
	var req relay.GenerationRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, &relay.Error{Kind: relay.KindInvalidRequest, Message: "request body too large or unreadable", Err: err})
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, &relay.Error{Kind: relay.KindInvalidRequest, Message: "request body must be a JSON object with a prompt", Err: err})
		return
	}
	res, err := a.Relay.Generate(r.Context(), req)
	if err != nil {
		var rerr *relay.Error
		if !errors.As(err, &rerr) {
			rerr = &relay.Error{Kind: relay.KindUnknown, Message: "unexpected failure", Err: err}
		}
		logx.Log.Debug().Str("request_id", chiMiddleware.GetReqID(r.Context())).Str("status", string(rerr.Kind)).Msg("generate failed")
		writeError(w, rerr)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Body); err != nil {
		logx.Log.Error().Err(err).Msg("write generate result")
	}
}

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(kind relay.Kind) int {
	switch kind {
	case relay.KindInvalidRequest:
		return http.StatusBadRequest
	case relay.KindConfiguration:
		return http.StatusServiceUnavailable
	case relay.KindTimeout:
		return http.StatusGatewayTimeout
	case relay.KindHTTP, relay.KindNetwork, relay.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, e *relay.Error) {
	msg := e.Message
	if e.Kind == relay.KindUnknown && e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	writeJSON(w, StatusFor(e.Kind), ErrorResponse{
		Error:          msg,
		Status:         string(e.Kind),
		UpstreamStatus: e.UpstreamStatus,
		UpstreamBody:   e.UpstreamBody,
	})
}
