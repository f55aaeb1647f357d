package script

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/utils"
)

// Ending actions recorded in a Report.
const (
	EndingNone         = "none"
	EndingKept         = "kept"
	EndingSwapped      = "swapped"
	EndingStrengthened = "strengthened"
	EndingResolved     = "resolved"
	EndingSilenced     = "silenced"
)

func (p *Processor) enforceEnding(lines []Line, level schema.Resistance, ending schema.Ending) ([]Line, string) {
	if len(lines) < p.rules.MinLines {
		log.Debug("script too short for ending pass", "lines", len(lines))
		return lines, EndingNone
	}
	switch ending {
	case schema.EndingSilence:
		return p.silence(lines)
	case schema.EndingResolution:
		return lines, p.resolution(lines, level)
	default:
		return lines, p.impact(lines, level)
	}
}

func (p *Processor) silence(lines []Line) ([]Line, string) {
	last := len(lines) - 1
	if lines[last].Kind == StageDirection {
		if p.silences.has(lines[last].Text) {
			return lines, EndingKept
		}
		lines[last].Text = p.pick(p.rules.SilenceDirections)
		return lines, EndingSilenced
	}
	return append(lines, Line{Kind: StageDirection, Text: p.pick(p.rules.SilenceDirections), detached: true}), EndingSilenced
}

func (p *Processor) impact(lines []Line, level schema.Resistance) string {
	f := lastDialogue(lines)
	if f < 0 {
		return EndingNone
	}
	h := headerFor(lines, f)
	if h < 0 {
		return EndingNone
	}
	if p.strong(lines[f].Text, lines[h].Emotion) {
		return EndingKept
	}

	action := EndingStrengthened
	if j := p.candidate(lines, f, h, p.impactScore, func(text string) bool {
		return p.power.any(text) && wordCount(text) <= p.rules.MaxImpactWords
	}); j >= 0 {
		lines[f].Text, lines[j].Text = lines[j].Text, lines[f].Text
		lines[f].Text = terminate(lines[f].Text)
		action = EndingSwapped
	} else {
		lines[f].Text = p.strengthen(lines[f].Text)
	}
	p.upgrade(&lines[h], level, p.rules.ResoluteEmotions, p.resolute)
	return action
}

func (p *Processor) resolution(lines []Line, level schema.Resistance) string {
	f := lastDialogue(lines)
	if f < 0 {
		return EndingNone
	}
	h := headerFor(lines, f)
	if h < 0 {
		return EndingNone
	}
	if p.soft.any(lines[f].Text) && hasTerminal(lines[f].Text) && p.softTags.matches(lines[h].Emotion) {
		return EndingKept
	}

	action := EndingResolved
	if j := p.candidate(lines, f, h, p.softScore, func(text string) bool {
		return p.soft.any(text)
	}); j >= 0 {
		lines[f].Text, lines[j].Text = lines[j].Text, lines[f].Text
		lines[f].Text = terminate(lines[f].Text)
		action = EndingSwapped
	} else {
		closing := p.pick(p.rules.ResolutionLines[p.category(lines[h].Emotion)])
		if closing == "" {
			closing = p.pick(p.rules.ResolutionLines["hope"])
		}
		lines[f].Text = strings.TrimSpace(terminate(lines[f].Text) + " " + closing)
	}
	p.upgrade(&lines[h], level, p.rules.SoftEmotions, p.softTags)
	return action
}

// candidate returns the best earlier dialogue line of the final speaker that
// passes ok and scores at least the swap threshold, preferring later lines on ties.
func (p *Processor) candidate(lines []Line, f, h int, score func(text, emotion string) int, ok func(string) bool) int {
	who := speakerKey(lines[h].Speaker)
	best, bestScore := -1, 0
	for j := 0; j < f; j++ {
		if lines[j].Kind != Dialogue {
			continue
		}
		hj := headerFor(lines, j)
		if hj < 0 || speakerKey(lines[hj].Speaker) != who || !ok(lines[j].Text) {
			continue
		}
		if sc := score(lines[j].Text, lines[hj].Emotion); sc >= p.rules.SwapThreshold && sc >= bestScore {
			best, bestScore = j, sc
		}
	}
	return best
}

func (p *Processor) strong(text, emotion string) bool {
	return p.power.any(text) && wordCount(text) <= p.rules.MaxImpactWords &&
		hasTerminal(text) && p.resolute.matches(emotion)
}

func (p *Processor) impactScore(text, emotion string) int {
	return p.score(text, emotion, p.power, p.resolute, p.rules.MaxImpactWords)
}

func (p *Processor) softScore(text, emotion string) int {
	return p.score(text, emotion, p.soft, p.softTags, p.rules.MaxImpactWords+4)
}

// score weighs vocabulary 3, brevity 2, terminal punctuation 1 and tag 2.
func (p *Processor) score(text, emotion string, vocab, tags wordSet, maxWords int) int {
	sc := 0
	if vocab.any(text) {
		sc += 3
	}
	if wordCount(text) <= maxWords {
		sc += 2
	}
	if hasTerminal(text) {
		sc++
	}
	if tags.matches(emotion) {
		sc += 2
	}
	return sc
}

var (
	clauseBreak  = regexp.MustCompile(`[,;:.!?…—]+\s*|\s+-\s+`)
	leadingJoins = regexp.MustCompile(`(?i)^(?:and|but|so|or|because|then)\s+`)
)

// strengthen cuts text to a short clause, adds a power word when missing and
// ends it hard.
func (p *Processor) strengthen(text string) string {
	question := strings.HasSuffix(strings.TrimSpace(text), "?")
	if wordCount(text) > p.rules.TruncateWords {
		text = p.truncate(text)
	}
	text = strings.TrimRight(strings.TrimSpace(text), ".!?,;:…-—– ")
	if !p.power.any(text) {
		tail := p.pick(p.rules.PowerTails)
		if text == "" {
			text = tail
		} else {
			text += " " + tail
		}
	}
	switch {
	case question:
		text += "?"
	case p.chance(p.rules.ExclaimBias):
		text += "!"
	default:
		text += "."
	}
	return utils.CapitalizeFirst(text)
}

func (p *Processor) truncate(text string) string {
	clauses := clauseBreak.Split(text, -1)
	for i := len(clauses) - 1; i >= 0; i-- {
		c := leadingJoins.ReplaceAllString(strings.TrimSpace(clauses[i]), "")
		if n := wordCount(c); n >= 2 && n <= p.rules.TruncateWords {
			return c
		}
	}
	return strings.Join(strings.Fields(text)[:p.rules.TruncateWords], " ")
}

// upgrade swaps the header tag for one from set unless it already belongs there
// or carries a progression stage.
func (p *Processor) upgrade(h *Line, level schema.Resistance, choices []string, set wordSet) {
	if set.matches(h.Emotion) || stageOf(p.rules.Stages[level], h.Emotion) >= 0 {
		return
	}
	if e := p.pick(choices); e != "" {
		h.Emotion = e
	}
}

func (p *Processor) category(emotion string) string {
	e := strings.ToLower(emotion)
	for _, c := range p.rules.ResolutionCategory {
		for _, w := range strings.Fields(e) {
			for _, ce := range c.Emotions {
				if w == ce {
					return c.Name
				}
			}
		}
	}
	return "hope"
}

func lastDialogue(lines []Line) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Kind == Dialogue {
			return i
		}
	}
	return -1
}

func headerFor(lines []Line, i int) int {
	for ; i >= 0; i-- {
		if lines[i].Kind == Header {
			return i
		}
	}
	return -1
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func hasTerminal(s string) bool {
	s = strings.TrimRight(strings.TrimSpace(s), `"'”)`)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func terminate(s string) string {
	s = strings.TrimSpace(s)
	if hasTerminal(s) {
		return s
	}
	return strings.TrimRight(s, ",;:-—– ") + "."
}
