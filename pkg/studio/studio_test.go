package studio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/script"
)

// fakeLLM answers every call with reply and records what it was sent.
type fakeLLM struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	params []*openai.ChatCompletionNewParams
	users  []string
}

func (f *fakeLLM) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.params = append(f.params, params)
	f.users = append(f.users, user)
	return f.reply, f.err
}

var hookReq = schema.HookRequest{
	Hook:    "  I stopped praying when I stopped believing I mattered.  ",
	Context: "character sitting alone at night",
	Emotion: "Despair",
	Theme:   "Faith",
}

const verdict = "```json\n" + `{"score": 8, "tripBreakdown": {"tension": true, "relatability": true, "intrigue": false, "personalStakes": true},
"feedback": "Strong confession.", "variations": ["a", "b", "c"], "reframePrompt": null}` + "\n```"

func TestAnalyzeHook(t *testing.T) {
	llm := &fakeLLM{reply: verdict}
	s := New(llm, nil, time.Minute)

	got, err := s.AnalyzeHook(context.Background(), hookReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 8 || !got.TripBreakdown.PersonalStakes || len(got.Variations) != 3 {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if got.OriginalHook != "I stopped praying when I stopped believing I mattered." {
		t.Fatalf("expected the trimmed hook, got %q", got.OriginalHook)
	}

	p := llm.params[0]
	if p.Temperature.Value != 0.7 || p.MaxTokens.Value != 1500 || p.ResponseFormat.OfJSONSchema == nil {
		t.Fatalf("unexpected hook call params %+v", p)
	}

	if _, err := s.AnalyzeHook(context.Background(), hookReq); err != nil || llm.calls != 1 {
		t.Fatalf("expected the second analysis to be served from cache, calls=%d err=%v", llm.calls, err)
	}
	if _, err := s.ReanalyzeHook(context.Background(), hookReq); err != nil || llm.calls != 2 {
		t.Fatalf("expected reanalysis to call the model, calls=%d err=%v", llm.calls, err)
	}
}

func TestAnalyzeHookFallbackIsNotCached(t *testing.T) {
	llm := &fakeLLM{reply: "I would rate this hook quite highly!"}
	s := New(llm, nil, time.Minute)

	for range 2 {
		got, err := s.AnalyzeHook(context.Background(), hookReq)
		if err != nil {
			t.Fatalf("expected the fallback without an error, got %v", err)
		}
		if got.Score != 0 || got.Variations == nil || got.ReframePrompt != nil || !strings.Contains(got.Feedback, "error analyzing your hook") {
			t.Fatalf("expected the fallback analysis, got %+v", got)
		}
	}
	if llm.calls != 2 {
		t.Fatalf("expected the fallback not to be cached, got %d calls", llm.calls)
	}
}

func TestAnalyzeHookErrors(t *testing.T) {
	llm := &fakeLLM{err: apperr.Upstream("The model request failed", 429, "slow down", nil)}
	s := New(llm, nil, time.Minute)

	incomplete := hookReq
	incomplete.Context = " "
	_, err := s.AnalyzeHook(context.Background(), incomplete)
	if !errors.Is(err, apperr.ErrValidation) || apperr.UserMessage(err) != "Please fill in all required fields" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if llm.calls != 0 {
		t.Fatal("expected no call for an invalid request")
	}

	if _, err := s.AnalyzeHook(context.Background(), hookReq); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

var brief = schema.ScriptBrief{
	Philosophy:      "Discipline is not punishment but self-respect.",
	CharacterRoles:  "Coach and athlete",
	Tone:            "Raw & Direct (Brutally honest, zero sugar-coating)",
	Themes:          []string{"Discipline"},
	EmotionalArc:    "Denial to acceptance",
	ResistanceLevel: schema.ResistanceLow,
	EmotionEnding:   "Silence (No final line, just realization)",
}

const generated = `<think>plan the scene</think>
🗣 Coach:
"Get up."

🗣 Jay (angry):
um, I am tired

🎵 MUSIC RECOMMENDATION:
Slow piano, 70 bpm.`

func TestGenerateScript(t *testing.T) {
	llm := &fakeLLM{reply: generated}
	s := New(llm, script.NewDefault(), 0)

	res, err := s.GenerateScript(context.Background(), brief)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := llm.params[0]; p.Temperature.Value != 0.8 || p.MaxTokens.Value != 2500 {
		t.Fatalf("unexpected script call params %+v", p)
	}
	if !strings.Contains(llm.users[0], `Write a script titled "Untitled Script".`) {
		t.Fatalf("expected the normalised brief in the prompt, got %q", llm.users[0])
	}
	if res.MusicRecommendation != "🎵 MUSIC RECOMMENDATION:\nSlow piano, 70 bpm." {
		t.Fatalf("unexpected music %q", res.MusicRecommendation)
	}
	if strings.Contains(res.Raw, "<think>") || strings.Contains(res.Script, "MUSIC") {
		t.Fatalf("expected the body only, got raw %q", res.Raw)
	}
	if !strings.HasPrefix(res.Script, "🗣 Coach (neutral):\nGet up.") {
		t.Fatalf("expected a formatted first block, got %q", res.Script)
	}
	if !strings.Contains(res.Script, "I'm tired") {
		t.Fatalf("expected dialogue cleanup, got %q", res.Script)
	}
	if res.Report.Ending != script.EndingNone && res.Report.Ending != script.EndingSilenced {
		t.Fatalf("unexpected ending action %q", res.Report.Ending)
	}
	if res.Diff.Edits() == 0 {
		t.Fatal("expected the diff to report edits")
	}
	if res.Brief.Title != "Untitled Script" || res.Brief.NumCharacters != 2 {
		t.Fatalf("expected the normalised brief, got %+v", res.Brief)
	}
}

func TestGenerateScriptRejectsShortReply(t *testing.T) {
	s := New(&fakeLLM{reply: "Too short."}, nil, 0)
	_, err := s.GenerateScript(context.Background(), brief)
	if !errors.Is(err, apperr.ErrUpstream) || !strings.Contains(err.Error(), "invalid script") {
		t.Fatalf("expected invalid script error, got %v", err)
	}
}

func TestGenerateScriptValidates(t *testing.T) {
	llm := &fakeLLM{reply: generated}
	s := New(llm, nil, 0)
	b := brief
	b.Philosophy = ""
	_, err := s.GenerateScript(context.Background(), b)
	if apperr.UserMessage(err) != "Please enter your philosophical idea" {
		t.Fatalf("expected the philosophy message, got %v", err)
	}
	if llm.calls != 0 {
		t.Fatal("expected no call for an invalid brief")
	}
}

func TestProcess(t *testing.T) {
	s := New(&fakeLLM{}, script.NewDefault(), 0)
	res := s.Process("🗣 Sam:\nHello there.", schema.ResistanceMedium, schema.EndingImpact)
	if res.Script == "" || res.Raw != "🗣 Sam:\nHello there." {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Diff.Edits() == 0 || res.Diff.Changes[len(res.Diff.Changes)-1].New != "Hello there." {
		t.Fatalf("expected the header change in the diff, got %+v", res.Diff)
	}
}

func TestStripThinking(t *testing.T) {
	if got := stripThinking("<think>a</think>answer"); got != "answer" {
		t.Fatalf("expected answer, got %q", got)
	}
	if got := stripThinking("plain"); got != "plain" {
		t.Fatalf("expected plain, got %q", got)
	}
}
