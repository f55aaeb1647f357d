// Package script turns raw model output into a clean dialogue script: one
// classification pass builds a tagged line sequence, then fixed passes repair
// emotions, dialogue, the resistant speaker's arc and the final line.
package script

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"hookbuilder/pkg/schema"
)

type Processor struct {
	rules Rules

	fillers      []*regexp.Regexp
	contractions []rewrite

	power    wordSet
	resolute wordSet
	soft     wordSet
	softTags wordSet
	negative wordSet
	silences wordSet

	mu  sync.Mutex
	rng *rand.Rand
}

// Report summarises what the structural passes did.
type Report struct {
	Progression
	Ending string `json:"ending"`
}

// New compiles rules. A nil rng is seeded from the clock.
func New(rules Rules, rng *rand.Rand) (*Processor, error) {
	rules = rules.withDefaults()
	for level, stages := range rules.Stages {
		for _, s := range stages {
			if len(s.Emotions) == 0 {
				return nil, fmt.Errorf("stage %q of level %s has no emotions", s.Name, level)
			}
		}
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	p := &Processor{
		rules:    rules,
		rng:      rng,
		power:    newWordSet(rules.PowerWords, tailWords(rules.PowerTails)),
		resolute: newWordSet(rules.ResoluteEmotions),
		soft:     newWordSet(rules.SoftWords),
		softTags: newWordSet(rules.SoftEmotions),
		negative: newWordSet(rules.NegativeEmotions),
		silences: newWordSet(rules.SilenceDirections),
	}
	for _, f := range rules.Fillers {
		re, err := regexp.Compile(f)
		if err != nil {
			return nil, fmt.Errorf("filler %q: %w", f, err)
		}
		p.fillers = append(p.fillers, re)
	}
	for _, c := range rules.Contractions {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("contraction %q: %w", c.Pattern, err)
		}
		p.contractions = append(p.contractions, rewrite{re: re, repl: c.Replace, notAfter: newWordSet(c.NotAfter)})
	}
	return p, nil
}

// NewDefault returns a processor with DefaultRules.
func NewDefault() *Processor {
	p, err := New(DefaultRules(), nil)
	if err != nil {
		panic(err)
	}
	return p
}

// Process runs the whole pipeline and returns the cleaned text.
func (p *Processor) Process(raw string, level schema.Resistance, ending schema.Ending) string {
	s, _ := p.ProcessScript(raw, level, ending)
	return s.Text()
}

func (p *Processor) ProcessScript(raw string, level schema.Resistance, ending schema.Ending) (Script, Report) {
	text := NormalizePunctuation(CleanGlyphs(raw))
	lines := restructure(classify(text))

	for i := range lines {
		if lines[i].Kind == Header {
			lines[i].Emotion = p.fixEmotion(lines[i].Emotion)
		}
	}
	lines = dropEmptyParens(lines)
	for i := range lines {
		if lines[i].Kind == Dialogue {
			lines[i].Text = p.naturalize(lines[i].Text)
		}
	}
	lines = restructure(dropEmptyDialogue(lines))

	var rep Report
	lines, rep.Progression = p.enforceProgression(lines, level)
	lines, rep.Ending = p.enforceEnding(lines, level, ending)
	return layout(lines), rep
}

func dropEmptyDialogue(lines []Line) []Line {
	out := lines[:0]
	for _, l := range lines {
		if l.Kind == Dialogue && !hasLetter(l.Text) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (p *Processor) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return options[p.rng.IntN(len(options))]
}

func (p *Processor) chance(prob float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < prob
}

type wordSet map[string]struct{}

func newWordSet(lists ...[]string) wordSet {
	s := wordSet{}
	for _, list := range lists {
		for _, w := range list {
			s[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// matches reports whether an emotion tag, or any word of it, is in the set.
func (s wordSet) matches(tag string) bool {
	if s.has(tag) {
		return true
	}
	for _, w := range strings.Fields(tag) {
		if s.has(strings.Trim(w, ",.;:-")) {
			return true
		}
	}
	return false
}

// any reports whether any word of text is in the set.
func (s wordSet) any(text string) bool {
	for _, w := range strings.Fields(text) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" && s.has(w) {
			return true
		}
	}
	return false
}

// tailWords returns the last word of each power tail so an appended tail always counts.
func tailWords(tails []string) []string {
	var out []string
	for _, t := range tails {
		if f := strings.Fields(t); len(f) > 0 {
			out = append(out, f[len(f)-1])
		}
	}
	return out
}
