// Package response turns raw completions into the structures the studio works with.
package response

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/utils"
)

const (
	maxScore      = 10
	maxVariations = 3

	fallbackFeedback = "Sorry, there was an error analyzing your hook. Please try again."
)

// Fallback is the zeroed analysis shown when the model's answer cannot be read.
func Fallback(originalHook string) schema.HookAnalysis {
	return schema.HookAnalysis{
		OriginalHook: originalHook,
		HookVerdict: schema.HookVerdict{
			Feedback:   fallbackFeedback,
			Variations: []string{},
		},
	}
}

// HookAnalysis decodes a T.R.I.P. verdict from content, tolerating markdown
// fences and prose around the JSON object. When decoding fails it returns the
// Fallback analysis together with a parse error; callers show the fallback.
func HookAnalysis(content, originalHook string) (schema.HookAnalysis, error) {
	body := utils.CleanJSON(content)
	if obj, ok := utils.ExtractJSONObject(body); ok {
		body = obj
	}

	var v schema.HookVerdict
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		log.Warn("could not parse hook analysis", "err", err, "content", utils.LimitStr(content, 200))
		return Fallback(originalHook), apperr.Parse("The hook analysis was not in the expected format", err)
	}

	v.Score = min(max(v.Score, 0), maxScore)
	if v.Variations == nil {
		v.Variations = []string{}
	}
	if len(v.Variations) > maxVariations {
		v.Variations = v.Variations[:maxVariations]
	}
	if v.ReframePrompt != nil && strings.TrimSpace(*v.ReframePrompt) == "" {
		v.ReframePrompt = nil
	}
	return schema.HookAnalysis{OriginalHook: originalHook, HookVerdict: v}, nil
}
