package api

import (
	"net/http"
)

type modelItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DisplayName  string   `json:"display_name"`
	Description  string   `json:"description"`
	APIModel     string   `json:"api_model"`
	Aliases      []string `json:"aliases,omitempty"`
	Capabilities []string `json:"capabilities"`
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models  []modelItem `json:"models"`
	Default string      `json:"default"`
}

// GetModels handles GET /api/models.
func (a *API) GetModels(w http.ResponseWriter, r *http.Request) {
	resp := ModelsResponse{Default: a.Relay.DefaultModel().Key}
	for _, m := range a.Relay.Models() {
		caps := m.Capabilities
		if caps == nil {
			caps = []string{}
		}
		resp.Models = append(resp.Models, modelItem{
			ID:           m.Key,
			Name:         m.Name,
			DisplayName:  m.DisplayName(),
			Description:  m.Description,
			APIModel:     m.UpstreamID,
			Aliases:      m.Aliases,
			Capabilities: caps,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
