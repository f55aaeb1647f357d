// Package inference sends prompt pairs to chat-completion providers.
package inference

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"hookbuilder/pkg/config"
	"hookbuilder/pkg/utils"
)

// Inferencer runs a single completion and returns the first choice's text.
// Sampling and response format come from params; nil params use the backend defaults.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}

// OpenAI-compatible hosts selectable with INFERENCE_PROVIDER.
var compatible = map[string]struct {
	baseURL string
	model   string
}{
	"grok":     {baseURL: "https://api.x.ai/v1", model: "grok-4-fast-reasoning"},
	"moonshot": {baseURL: "https://api.moonshot.ai/v1", model: "kimi-k2-5"},
	"kimi":     {baseURL: "https://api.kimi.com/coding/v1", model: "kimi-for-coding"},
}

// New builds the inferencer named by cfg.Provider.
func New(cfg config.Config) (Inferencer, error) {
	switch cfg.Provider {
	case "", "openai":
		o := NewOpenAIInferencer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if cfg.OpenAIBaseURL != "" {
			o.ChangeBaseURL(cfg.OpenAIBaseURL)
		}
		return o, nil
	case "gemini":
		return NewGeminiInferencer(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	host, ok := compatible[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
	model := host.model
	if cfg.OpenAIModel != "" && cfg.OpenAIModel != config.DefaultOpenAIModel {
		model = cfg.OpenAIModel
	}
	o := NewOpenAIInferencer(cfg.OpenAIAPIKey, model)
	o.provider = cfg.Provider
	o.ChangeBaseURL(host.baseURL)
	return o, nil
}

// logPromptSize logs an estimated prompt token count. Counting loads the BPE
// tables, so it only runs when debug logging is on.
func logPromptSize(provider, model, system, user string) {
	if log.GetLevel() > log.DebugLevel {
		return
	}
	n, err := utils.NumTokens(model, system+"\n"+user)
	if err != nil {
		log.Debug("could not count prompt tokens", "err", err)
		return
	}
	log.Debug("sending prompt", "provider", provider, "model", model, "tokens", n)
}
