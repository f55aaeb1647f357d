package inference

import (
	"cmp"
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/config"
	"hookbuilder/pkg/metrics"
)

type GeminiInferencer struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiInferencer creates a new inferencer instance using the Gemini API.
// The client is created on first use so a placeholder key does not fail startup.
func NewGeminiInferencer(apiKey string, model string) (*GeminiInferencer, error) {
	return &GeminiInferencer{
		apiKey: apiKey,
		model:  cmp.Or(model, "gemini-2.5-flash"),
	}, nil
}

func (o *GeminiInferencer) ChangeConfig(ctx context.Context, cfg *genai.ClientConfig) error {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	o.client = client
	return nil
}

// Infer maps the OpenAI-style params onto a GenerateContent call. A JSON
// response format turns on JSON output.
func (o *GeminiInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if config.IsPlaceholder(o.apiKey) {
		return "", apperr.Configuration("The Gemini API key is not configured", nil)
	}
	if o.client == nil {
		if err := o.ChangeConfig(ctx, &genai.ClientConfig{APIKey: o.apiKey, Backend: genai.BackendGeminiAPI}); err != nil {
			return "", apperr.Configuration("Could not create the Gemini client", err)
		}
	}
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	model := cmp.Or(params.Model, o.model)

	temperature := 0.7
	if params.Temperature.Valid() {
		temperature = params.Temperature.Value
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   int32(cmp.Or(params.MaxTokens.Value, params.MaxCompletionTokens.Value, 1500)),
		Temperature:       genai.Ptr(float32(temperature)),
	}
	if params.ResponseFormat.OfJSONSchema != nil || params.ResponseFormat.OfJSONObject != nil {
		cfg.ResponseMIMEType = "application/json"
	}

	logPromptSize("gemini", model, system, user)

	start := time.Now()
	text, err := o.generate(ctx, model, user, cfg)
	metrics.ObserveLLM("gemini", model, start, err)
	return text, err
}

func (o *GeminiInferencer) generate(ctx context.Context, model, user string, cfg *genai.GenerateContentConfig) (string, error) {
	result, err := o.client.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", apperr.Upstream("The model request failed", apiErr.Code, apiErr.Message, err)
		}
		return "", apperr.Upstream("The model request failed", 0, "", err)
	}
	if u := result.UsageMetadata; u != nil {
		metrics.LLMTokensUsed.WithLabelValues("gemini", model, "prompt").Add(float64(u.PromptTokenCount))
		metrics.LLMTokensUsed.WithLabelValues("gemini", model, "completion").Add(float64(u.CandidatesTokenCount))
	}
	if len(result.Candidates) == 0 {
		return "", apperr.Protocol("The model returned no candidates")
	}
	text := result.Text()
	if text == "" {
		return "", apperr.Protocol("The model returned an empty completion")
	}
	return text, nil
}
