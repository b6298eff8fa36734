package relay

import (
	"bytes"
	"encoding/json"
)

// ChatMessage is one entry of the upstream message list.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sampling holds the generation parameters sent with every request.
type Sampling struct {
	MaxTokens        int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature      float64 `json:"temperature" yaml:"temperature"`
	TopP             float64 `json:"top_p" yaml:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty" yaml:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty" yaml:"presence_penalty"`
}

// DefaultSampling returns the parameters used by the deployed frontends.
func DefaultSampling() Sampling {
	return Sampling{
		MaxTokens:        1000,
		Temperature:      0.7,
		TopP:             0.9,
		FrequencyPenalty: 0.3,
		PresencePenalty:  0.2,
	}
}

// ChatRequest is the upstream chat-completion request body.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Sampling
}

func buildChatRequest(model, system, prompt string, s Sampling) ChatRequest {
	return ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Sampling: s,
	}
}

// encode marshals v without HTML escaping so the prompt reaches the upstream
// byte-for-byte apart from JSON string escaping.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
