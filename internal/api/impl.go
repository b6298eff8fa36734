package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gaspardpetit/promptrelay/internal/catalog"
	"github.com/gaspardpetit/promptrelay/internal/drain"
	"github.com/gaspardpetit/promptrelay/internal/logx"
	"github.com/gaspardpetit/promptrelay/internal/relay"
)

// Service is the relay behaviour the HTTP layer depends on.
type Service interface {
	Generate(ctx context.Context, req relay.GenerationRequest) (*relay.Result, error)
	Health() relay.HealthStatus
	Models() []catalog.ModelDescriptor
	DefaultModel() catalog.ModelDescriptor
}

// API implements the HTTP handlers.
type API struct {
	Relay Service
}

// GetHealthz is a liveness probe; it reports unavailable while draining.
func (a *API) GetHealthz(w http.ResponseWriter, r *http.Request) {
	if drain.IsDraining() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "draining"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// GetHealth handles GET /api/health.
func (a *API) GetHealth(w http.ResponseWriter, r *http.Request) {
	h := a.Relay.Health()
	if drain.IsDraining() {
		h.Status = "draining"
	}
	writeJSON(w, http.StatusOK, h)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("encode response")
	}
}
