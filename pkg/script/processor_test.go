package script

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"hookbuilder/pkg/schema"
)

func seeded(t *testing.T, seed uint64) *Processor {
	t.Helper()
	p, err := New(DefaultRules(), rand.New(rand.NewPCG(seed, seed+1)))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return p
}

// nonBlank returns the script's lines without blanks.
func nonBlank(s Script) []Line {
	var out []Line
	for _, l := range s.Lines {
		if l.Kind != Blank {
			out = append(out, l)
		}
	}
	return out
}

func emotionsOf(s Script, speaker string) []string {
	var out []string
	for _, l := range s.Lines {
		if l.Kind == Header && strings.EqualFold(l.Speaker, speaker) {
			out = append(out, l.Emotion)
		}
	}
	return out
}

func assertDialogueUnderHeaders(t *testing.T, s Script) {
	t.Helper()
	lines := nonBlank(s)
	for i, l := range lines {
		if l.Kind != Dialogue {
			continue
		}
		if i == 0 || lines[i-1].Kind != Header {
			t.Fatalf("dialogue %q is not directly under a header", l.Text)
		}
	}
}

func assertProgression(t *testing.T, emotions []string, stages []Stage) {
	t.Helper()
	seen := make([]bool, len(stages))
	last := -1
	for _, e := range emotions {
		st := stageOf(stages, e)
		if st < 0 {
			continue
		}
		if st < last {
			t.Fatalf("stage order decreases in %v", emotions)
		}
		last = st
		seen[st] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("stage %q missing from %v", stages[i].Name, emotions)
		}
	}
}

const highScript = `🗣 Mentor (calm):
You say you want change.

🗣 Kai (dismissive):
Please. Spare me.

🗣 Mentor (steady):
Then why are you still here?

🗣 Kai (angry):
Because I have nowhere else to go!

🗣 Mentor (gentle):
That is the first honest thing you have said.

🗣 Kai (vulnerable):
Maybe it is.

🗣 Mentor (calm):
Sit with it.`

func TestHighResistanceFillsEveryStage(t *testing.T) {
	stages := DefaultRules().Stages[schema.ResistanceHigh]
	for seed := uint64(1); seed <= 5; seed++ {
		p := seeded(t, seed)
		s, rep := p.ProcessScript(highScript, schema.ResistanceHigh, schema.EndingImpact)

		if rep.Resistant != "Kai" {
			t.Fatalf("expected Kai to be resistant, got %q", rep.Resistant)
		}
		if rep.Synthesized != 5 {
			t.Fatalf("expected 5 synthesized stages, got %d", rep.Synthesized)
		}
		assertDialogueUnderHeaders(t, s)
		assertProgression(t, emotionsOf(s, "Kai"), stages)

		// The rendered text classifies back to the same invariants.
		reparsed := Parse(p.Process(highScript, schema.ResistanceHigh, schema.EndingImpact))
		assertDialogueUnderHeaders(t, reparsed)
		assertProgression(t, emotionsOf(reparsed, "Kai"), stages)
	}
}

const mediumScript = `🗣 Mentor (calm):
Stop lying to yourself.

🗣 Kai (accepting):
I'm not lying.

🗣 Mentor (calm):
Then look at your life.

🗣 Kai (defensive):
Why do you keep pushing me?

🗣 Mentor (calm):
Because you matter.

🗣 Kai (questioning):
I don't get it.

🗣 Mentor (calm):
You will.

🗣 Kai (frustrated):
Maybe I've been wrong.

🗣 Kai (reflective):
Okay.`

func TestMediumReordersWithoutMovingLines(t *testing.T) {
	p := seeded(t, 7)
	s, rep := p.ProcessScript(mediumScript, schema.ResistanceMedium, schema.EndingSilence)

	got := emotionsOf(s, "Kai")
	want := []string{"defensive", "frustrated", "questioning", "reflective", "accepting"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !rep.Reordered || rep.Relabeled != 0 || rep.Synthesized != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}

	var kaiLines []string
	lines := nonBlank(s)
	for i, l := range lines {
		if l.Kind == Dialogue && strings.EqualFold(lines[i-1].Speaker, "Kai") {
			kaiLines = append(kaiLines, l.Text)
		}
	}
	if kaiLines[0] != "I'm not lying." || kaiLines[3] != "Maybe I've been wrong." {
		t.Fatalf("expected dialogue to stay in place, got %v", kaiLines)
	}
}

func TestLowRelabelsUnstagedLines(t *testing.T) {
	raw := `🗣 Guide (calm): What are you afraid of?
🗣 Sam (skeptical): Nothing.
🗣 Guide (calm): Then why hide?
🗣 Sam: I'm not hiding.
🗣 Guide (calm): Look closer.
🗣 Sam: Fine.
🗣 Guide (calm): And?
🗣 Sam (sighs): Maybe.`

	p := seeded(t, 3)
	s, rep := p.ProcessScript(raw, schema.ResistanceLow, schema.EndingSilence)
	got := emotionsOf(s, "Sam")
	want := []string{"skeptical", "considering", "understanding", "accepting"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if rep.Relabeled != 3 {
		t.Fatalf("expected 3 relabeled lines, got %d", rep.Relabeled)
	}
}

func TestSilenceEndsOnTemplateDirection(t *testing.T) {
	silences := DefaultRules().SilenceDirections
	for seed := uint64(1); seed <= 5; seed++ {
		out := seeded(t, seed).Process(mediumScript, schema.ResistanceMedium, schema.EndingSilence)
		lines := strings.Split(out, "\n")
		last := lines[len(lines)-1]
		if !slices.Contains(silences, last) {
			t.Fatalf("expected a silence direction, got %q", last)
		}
		if lines[len(lines)-2] != "" {
			t.Fatalf("expected the silence to stand as its own block, got %q", lines[len(lines)-2])
		}
	}
}

const impactScript = `🗣 Mentor (calm):
Stop lying to yourself.

🗣 Kai (defensive):
I'm not lying.

🗣 Mentor (calm):
Then look at your life.

🗣 Kai (frustrated):
Why do you keep pushing me?

🗣 Mentor (calm):
Because you matter.

🗣 Kai (confused):
I don't get it.

🗣 Mentor (calm):
You will.

🗣 Kai (reflective):
Maybe I've been wrong.

🗣 Kai (accepting):
Okay.

🗣 Mentor (calm):
I guess what I am trying to say is that you should probably think about it a little more before deciding anything at all`

func TestImpactSwapsInStrongerLine(t *testing.T) {
	p := seeded(t, 11)
	s, rep := p.ProcessScript(impactScript, schema.ResistanceMedium, schema.EndingImpact)
	if rep.Ending != EndingSwapped {
		t.Fatalf("expected swap, got %q", rep.Ending)
	}
	lines := nonBlank(s)
	last := lines[len(lines)-1]
	if last.Text != "Stop lying to yourself." {
		t.Fatalf("expected the mic drop line last, got %q", last.Text)
	}
	header := lines[len(lines)-2]
	if !slices.Contains(DefaultRules().ResoluteEmotions, header.Emotion) {
		t.Fatalf("expected a resolute tag, got %q", header.Emotion)
	}
	if rep.Reordered || rep.Synthesized != 0 || rep.Relabeled != 0 {
		t.Fatalf("expected progression untouched, got %+v", rep.Progression)
	}
}

func TestImpactFinalLineIsStrong(t *testing.T) {
	rules := DefaultRules()
	p := seeded(t, 1)
	for _, raw := range []string{highScript, mediumScript, impactScript} {
		for seed := uint64(1); seed <= 8; seed++ {
			p.rng = rand.New(rand.NewPCG(seed, seed*3))
			s, _ := p.ProcessScript(raw, schema.ResistanceMedium, schema.EndingImpact)
			lines := nonBlank(s)
			text := lines[lastDialogue(lines)].Text
			if !p.power.any(text) {
				t.Fatalf("expected a power word in %q", text)
			}
			if n := wordCount(text); n > rules.MaxImpactWords {
				t.Fatalf("expected at most %d words, got %d in %q", rules.MaxImpactWords, n, text)
			}
			if !hasTerminal(text) {
				t.Fatalf("expected terminal punctuation in %q", text)
			}
		}
	}
}

func TestStrengthen(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		p := seeded(t, seed)
		got := p.strengthen("I guess what I am trying to say is that you should think about it")
		if !p.power.any(got) || wordCount(got) > 10 || !hasTerminal(got) {
			t.Fatalf("weak result %q", got)
		}
		if q := p.strengthen("why would you ever do that to yourself, after all this time?"); !strings.HasSuffix(q, "?") {
			t.Fatalf("expected question to stay a question, got %q", q)
		}
	}
}

func TestResolutionAppendsClosingLine(t *testing.T) {
	p := seeded(t, 5)
	s, rep := p.ProcessScript(impactScript, schema.ResistanceMedium, schema.EndingResolution)
	if rep.Ending != EndingResolved {
		t.Fatalf("expected resolved ending, got %q", rep.Ending)
	}
	lines := nonBlank(s)
	last := lines[len(lines)-1].Text
	closing := false
	for _, c := range DefaultRules().ResolutionLines["hope"] {
		if strings.HasSuffix(last, c) {
			closing = true
		}
	}
	if !closing {
		t.Fatalf("expected a hope closing line, got %q", last)
	}
	if h := lines[len(lines)-2]; h.Emotion != "calm" {
		t.Fatalf("expected soft tag to be kept, got %q", h.Emotion)
	}
}

func TestShortScriptIsLeftAlone(t *testing.T) {
	raw := "🗣 Ava (calm):\nHi."
	p := seeded(t, 1)
	s, rep := p.ProcessScript(raw, schema.ResistanceHigh, schema.EndingImpact)
	if got := s.String(); got != raw {
		t.Fatalf("expected %q, got %q", raw, got)
	}
	if rep.Ending != EndingNone || rep.Resistant != "" {
		t.Fatalf("expected no structural changes, got %+v", rep)
	}
}

func TestLoadRulesKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(`{"powerWords": ["legacy"], "maxImpactWords": 12}`), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if !slices.Equal(r.PowerWords, []string{"legacy"}) || r.MaxImpactWords != 12 {
		t.Fatalf("expected overrides to apply, got %v %d", r.PowerWords, r.MaxImpactWords)
	}
	if len(r.Stages[schema.ResistanceHigh]) != 8 || r.SwapThreshold != 6 {
		t.Fatalf("expected defaults for omitted fields")
	}
}

func TestNewRejectsBadPattern(t *testing.T) {
	r := DefaultRules()
	r.Fillers = []string{`(unclosed`}
	if _, err := New(r, nil); err == nil {
		t.Fatal("expected invalid filler pattern to fail")
	}
}
