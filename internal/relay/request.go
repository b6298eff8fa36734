package relay

import (
	"encoding/json"

	"github.com/gaspardpetit/promptrelay/internal/catalog"
)

// GenerationRequest is the caller-supplied input to Generate.
type GenerationRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// Result is a successful generation: the upstream JSON object with the
// bookkeeping fields injected.
type Result struct {
	Model          catalog.ModelDescriptor
	UpstreamStatus int
	Body           json.RawMessage
}

// Bookkeeping fields added to the upstream response.
const (
	FieldSelectedModelName = "selected_model_name"
	FieldSelectedModelID   = "selected_model_id"
	FieldModelDescription  = "model_description"
)
