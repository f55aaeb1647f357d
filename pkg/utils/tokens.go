package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// NumTokens counts tokens with the encoding for model, falling back to cl100k_base
// for models tiktoken does not know (Gemini, OpenAI-compatible hosts).
func NumTokens(model, text string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return 0, err
		}
	}
	return len(tkm.Encode(text, nil, nil)), nil
}
