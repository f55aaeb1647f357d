package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var HookVerdictSchema = generateSchema[HookVerdict]()

// HookAnalysisResponseFormat asks the model for a HookVerdict object.
func HookAnalysisResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "hook_analysis",
		Description: openai.String("T.R.I.P. framework analysis of a short-form video hook"),
		Schema:      HookVerdictSchema,
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
