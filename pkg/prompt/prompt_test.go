package prompt

import (
	"slices"
	"strings"
	"testing"

	"hookbuilder/pkg/schema"
)

func TestKeyPoints(t *testing.T) {
	philosophy := "Discipline is not punishment but self-respect. It's about showing up when nobody claps.\n" +
		"- Pain is information\n" +
		"- Comfort is a slow death"

	got := KeyPoints(philosophy)
	if len(got) > 5 {
		t.Fatalf("expected at most 5 points, got %d", len(got))
	}
	for _, want := range []string{"Pain is information", "Comfort is a slow death", "not punishment but self-respect"} {
		if !slices.Contains(got, want) {
			t.Fatalf("expected %q in %v", want, got)
		}
	}
	n := 0
	for _, p := range got {
		if strings.HasPrefix(p, "It's about") {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected the lead-in exactly once, got %d in %v", n, got)
	}
}

func TestKeyPointsFallsBackToPhrases(t *testing.T) {
	got := KeyPoints("Money buys comfort, silence buys time; nothing buys peace")
	want := []string{"Money buys comfort", "silence buys time", "nothing buys peace"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestKeyPointsDropsNearDuplicates(t *testing.T) {
	got := KeyPoints("Stop waiting for permission. stop waiting for permission! Stop waiting for permissions.")
	if !slices.Equal(got, []string{"Stop waiting for permission"}) {
		t.Fatalf("expected one point, got %v", got)
	}
}

func TestMetaphors(t *testing.T) {
	got := Metaphors("Life is like a storm. Your past is a prison of habit. This is a test. Your mind is a mirror, and every chapter ends.")
	if len(got) != 3 {
		t.Fatalf("expected 3 metaphors, got %v", got)
	}
	if got[0] != "Life is like a storm" {
		t.Fatalf("expected the simile first, got %q", got[0])
	}
	for _, m := range got {
		if strings.Contains(m, "This is a test") {
			t.Fatalf("expected literal statements to be skipped, got %v", got)
		}
	}
	if len(Metaphors("Nothing figurative here.")) != 0 {
		t.Fatal("expected no metaphors")
	}
}

func TestHookPrompt(t *testing.T) {
	req := schema.HookRequest{
		Hook:    "I stopped praying when I stopped believing I mattered.",
		Context: "character sitting alone at night",
		Emotion: "Despair",
		Theme:   "Faith",
	}
	p := Hook(req)
	if !strings.Contains(p.System, "Personal Stakes") || !strings.Contains(p.System, `"tripBreakdown"`) {
		t.Fatal("expected the T.R.I.P. rubric and output shape in the system prompt")
	}
	if !strings.Contains(p.User, `Hook: "I stopped praying when I stopped believing I mattered."`) {
		t.Fatalf("expected the quoted hook, got %q", p.User)
	}
	if strings.Contains(p.User, "Tone:") {
		t.Fatal("expected no tone line when tone is empty")
	}

	req.Tone = "Raw"
	if !strings.Contains(Hook(req).User, "Tone: Raw") {
		t.Fatal("expected the tone line")
	}
}

func TestScriptPrompt(t *testing.T) {
	brief := schema.ScriptBrief{
		Philosophy:      "Discipline is not punishment but self-respect.",
		CharacterRoles:  "Coach and athlete",
		Tone:            "Raw & Direct (Brutally honest, zero sugar-coating)",
		Themes:          []string{"Discipline", "Growth"},
		EmotionalArc:    "Denial to acceptance",
		ResistanceLevel: schema.ResistanceHigh,
		OpeningStyle:    "Start mid-fight",
		EmotionEnding:   "Silence (No final line, just realization)",
		Pacing:          "Short (30 sec)",
		FinalMicDrop:    "Then stop lying.",
		Personalities: schema.Personalities{
			Messenger: "Calm and persuasive",
			Resistor:  "Defensive and angry",
		},
	}.Normalize()

	p := Script(brief)
	if !strings.Contains(p.System, "🗣 Name (emotion):") || !strings.Contains(p.System, "🎵 MUSIC RECOMMENDATION:") {
		t.Fatal("expected formatting markers in the system prompt")
	}
	for _, want := range []string{
		`Write a script titled "Untitled Script".`,
		resistanceInstructions[schema.ResistanceHigh],
		openingInstructions["mid-fight"],
		endingInstructions[schema.EndingSilence],
		pacingInstructions[schema.PacingShort],
		"Messenger personality: Calm and persuasive",
		"Resistor personality: Defensive and angry",
		"Themes: Discipline, Growth",
		"- not punishment but self-respect",
		"word for word: Then stop lying.",
	} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("expected %q in user prompt:\n%s", want, p.User)
		}
	}
	if strings.Contains(p.User, "Note from the creator") {
		t.Fatal("expected no creator note section")
	}
}

func TestScriptPromptPersonalitiesByCount(t *testing.T) {
	brief := schema.ScriptBrief{
		NumCharacters: 1,
		Personalities: schema.Personalities{Character1: "Cold and direct", Messenger: "ignored"},
	}.Normalize()
	user := Script(brief).User
	if !strings.Contains(user, "Personality: Cold and direct") || !strings.Contains(user, "monologue") {
		t.Fatalf("expected single-character section, got:\n%s", user)
	}
	if strings.Contains(user, "Messenger") {
		t.Fatal("expected messenger personality to be ignored for one character")
	}
}

func TestOpeningKey(t *testing.T) {
	tests := map[string]string{
		"Start with a question":              "question",
		"Start with a provocative statement": "provocative",
		"Start with humor":                   "humor",
		"":                                   "challenge",
	}
	for in, want := range tests {
		if got := openingKey(in); got != want {
			t.Fatalf("openingKey(%q): expected %q, got %q", in, want, got)
		}
	}
}
