// Package studio runs the hook and script workflows end to end:
// validate, build the prompt, call the model, parse, post-process and diff.
package studio

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/diff"
	"hookbuilder/pkg/flight"
	"hookbuilder/pkg/inference"
	"hookbuilder/pkg/metrics"
	"hookbuilder/pkg/prompt"
	"hookbuilder/pkg/response"
	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/script"
)

// Generated scripts shorter than this are treated as a failed call.
const minScriptLength = 30

type Studio struct {
	llm       inference.Inferencer
	processor *script.Processor
	hooks     flight.Cache[schema.HookRequest, schema.HookAnalysis]
}

// New wires a studio. Hook analyses are kept for hookTTL; zero keeps none.
func New(llm inference.Inferencer, processor *script.Processor, hookTTL time.Duration) *Studio {
	if processor == nil {
		processor = script.NewDefault()
	}
	s := &Studio{llm: llm, processor: processor}
	s.hooks = flight.NewCache(s.analyze)
	s.hooks.Expiry(hookTTL)
	s.hooks.Observe(func(result string) {
		metrics.HookCacheTotal.WithLabelValues(result).Inc()
	})
	return s
}

// AnalyzeHook scores a hook against the T.R.I.P. framework. A reply that cannot
// be parsed yields the fallback analysis rather than an error.
func (s *Studio) AnalyzeHook(ctx context.Context, req schema.HookRequest) (schema.HookAnalysis, error) {
	return s.hook(ctx, req, false)
}

// ReanalyzeHook is AnalyzeHook without the kept result.
func (s *Studio) ReanalyzeHook(ctx context.Context, req schema.HookRequest) (schema.HookAnalysis, error) {
	return s.hook(ctx, req, true)
}

func (s *Studio) hook(ctx context.Context, req schema.HookRequest, fresh bool) (schema.HookAnalysis, error) {
	req = trimHook(req)
	if err := schema.Validate(req); err != nil {
		return schema.HookAnalysis{}, err
	}

	get := s.hooks.Get
	if fresh {
		get = s.hooks.Force
	}
	analysis, err := get(ctx, req)
	switch {
	case err == nil:
		metrics.HookAnalysisTotal.WithLabelValues("success").Inc()
		return analysis, nil
	case apperr.KindOf(err) == apperr.KindParse:
		metrics.HookAnalysisTotal.WithLabelValues("fallback").Inc()
		return analysis, nil
	default:
		metrics.HookAnalysisTotal.WithLabelValues("error").Inc()
		log.Error("hook analysis failed", "err", err)
		return schema.HookAnalysis{}, err
	}
}

func (s *Studio) analyze(ctx context.Context, req schema.HookRequest) (schema.HookAnalysis, error) {
	p := prompt.Hook(req)
	params := &openai.ChatCompletionNewParams{
		Temperature:    openai.Float(0.7),
		MaxTokens:      openai.Int(1500),
		ResponseFormat: schema.HookAnalysisResponseFormat(),
	}
	out, err := s.llm.Infer(ctx, params, p.System, p.User)
	if err != nil {
		return schema.HookAnalysis{}, err
	}
	return response.HookAnalysis(stripThinking(out), req.Hook)
}

func trimHook(req schema.HookRequest) schema.HookRequest {
	req.Hook = strings.TrimSpace(req.Hook)
	req.Context = strings.TrimSpace(req.Context)
	req.Emotion = strings.TrimSpace(req.Emotion)
	req.Theme = strings.TrimSpace(req.Theme)
	req.Tone = strings.TrimSpace(req.Tone)
	return req
}

// Result is a processed script together with what processing changed.
type Result struct {
	Brief               schema.ScriptBrief `json:"brief"`
	Raw                 string             `json:"raw"`
	Script              string             `json:"script"`
	MusicRecommendation string             `json:"musicRecommendation,omitempty"`
	Lines               script.Script      `json:"lines"`
	Report              script.Report      `json:"report"`
	Diff                diff.Report        `json:"diff"`
}

// GenerateScript writes a script for brief and post-processes it.
func (s *Studio) GenerateScript(ctx context.Context, brief schema.ScriptBrief) (Result, error) {
	brief = brief.Normalize()
	if err := schema.Validate(brief); err != nil {
		return Result{}, err
	}

	p := prompt.Script(brief)
	params := &openai.ChatCompletionNewParams{
		Temperature: openai.Float(0.8),
		MaxTokens:   openai.Int(2500),
	}
	log.Info("generating script", "title", brief.Title, "characters", brief.NumCharacters, "resistance", brief.ResistanceLevel)
	out, err := s.llm.Infer(ctx, params, p.System, p.User)
	if err != nil {
		return Result{}, err
	}
	out = strings.TrimSpace(stripThinking(out))
	if len(out) < minScriptLength {
		return Result{}, apperr.Upstream("The API returned an invalid script", 0, "", nil)
	}

	generated := response.Script(out)
	res := s.Process(generated.Script, brief.ResistanceLevel, brief.Ending())
	res.Brief = brief
	res.MusicRecommendation = generated.MusicRecommendation
	return res, nil
}

// Process runs the post-processor over an existing script.
func (s *Studio) Process(raw string, level schema.Resistance, ending schema.Ending) Result {
	lines, rep := s.processor.ProcessScript(raw, level, ending)
	processed := lines.Text()
	changes := diff.Lines(raw, processed)

	recordReport(lines, rep)
	log.Debug("processed script",
		"resistant", rep.Resistant,
		"relabeled", rep.Relabeled,
		"synthesized", rep.Synthesized,
		"reordered", rep.Reordered,
		"ending", rep.Ending,
		"edits", changes.Edits(),
	)
	return Result{
		Raw:    raw,
		Script: processed,
		Lines:  lines,
		Report: rep,
		Diff:   changes,
	}
}

func recordReport(lines script.Script, rep script.Report) {
	n := 0
	for _, l := range lines.Lines {
		if l.Kind != script.Blank {
			n++
		}
	}
	metrics.ScriptLines.Observe(float64(n))
	if rep.Relabeled > 0 {
		metrics.ScriptAdjustments.WithLabelValues("progression", "relabel").Add(float64(rep.Relabeled))
	}
	if rep.Synthesized > 0 {
		metrics.ScriptAdjustments.WithLabelValues("progression", "synthesize").Add(float64(rep.Synthesized))
	}
	if rep.Reordered {
		metrics.ScriptAdjustments.WithLabelValues("progression", "reorder").Inc()
	}
	if rep.Ending != "" {
		metrics.ScriptAdjustments.WithLabelValues("ending", rep.Ending).Inc()
	}
}

// stripThinking drops a reasoning preamble some models emit before the answer.
func stripThinking(out string) string {
	if !strings.Contains(out, "<think>") {
		return out
	}
	if idx := strings.LastIndex(out, "</think>"); idx != -1 {
		return out[idx+len("</think>"):]
	}
	return out
}
