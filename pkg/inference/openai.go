package inference

import (
	"cmp"
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/config"
	"hookbuilder/pkg/metrics"
)

// OpenAIInferencer implements Inferencer using OpenAI's official Go SDK. It also
// serves OpenAI-compatible hosts through ChangeBaseURL.
type OpenAIInferencer struct {
	client   *openai.Client
	apiKey   string
	model    string
	provider string
}

// NewOpenAIInferencer creates a new inferencer instance using OpenAI client.
func NewOpenAIInferencer(apiKey string, model string) *OpenAIInferencer {
	return &OpenAIInferencer{
		client:   newOpenAIClient(apiKey, ""),
		apiKey:   apiKey,
		model:    cmp.Or(model, config.DefaultOpenAIModel),
		provider: "openai",
	}
}

// Requests are single attempts; the caller decides whether to try again.
func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &client
}

func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	o.client = newOpenAIClient(o.apiKey, baseURL)
}

// Infer sends text to the OpenAI chat completion endpoint and returns the output.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if config.IsPlaceholder(o.apiKey) {
		return "", apperr.Configuration("The OpenAI API key is not configured", nil)
	}

	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, o.model)
	p.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			}},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
	if !p.Temperature.Valid() {
		p.Temperature = openai.Float(0.7)
	}
	if !p.MaxTokens.Valid() && !p.MaxCompletionTokens.Valid() {
		p.MaxTokens = openai.Int(1500)
	}

	logPromptSize(o.provider, p.Model, system, user)

	start := time.Now()
	content, err := o.complete(ctx, p)
	metrics.ObserveLLM(o.provider, p.Model, start, err)
	return content, err
}

func (o *OpenAIInferencer) complete(ctx context.Context, p openai.ChatCompletionNewParams) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", apperr.Upstream("The model request failed", apiErr.StatusCode, apiErr.Message, err)
		}
		return "", apperr.Upstream("The model request failed", 0, "", err)
	}

	metrics.LLMTokensUsed.WithLabelValues(o.provider, p.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(o.provider, p.Model, "completion").Add(float64(resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 {
		return "", apperr.Protocol("The model returned no choices")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", apperr.Protocol("The model returned an empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
