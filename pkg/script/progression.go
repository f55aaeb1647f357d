package script

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"hookbuilder/pkg/schema"
)

// Progression reports what the progression pass changed.
type Progression struct {
	Resistant   string `json:"resistant,omitempty"`
	Relabeled   int    `json:"relabeled"`
	Synthesized int    `json:"synthesized"`
	Reordered   bool   `json:"reordered"`
}

type speaker struct {
	key   string
	name  string
	count int
	first int
}

// rankSpeakers orders speakers by header count, then by first appearance.
func rankSpeakers(lines []Line) []speaker {
	var out []speaker
	index := map[string]int{}
	for i, l := range lines {
		if l.Kind != Header {
			continue
		}
		k := speakerKey(l.Speaker)
		j, ok := index[k]
		if !ok {
			j = len(out)
			index[k] = j
			out = append(out, speaker{key: k, name: l.Speaker, first: i})
		}
		out[j].count++
	}
	slices.SortStableFunc(out, func(a, b speaker) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.first, b.first)
	})
	return out
}

// stageOf returns the index of the stage whose set holds emotion, matching the
// whole tag first and then each of its words. -1 means the tag carries no stage.
func stageOf(stages []Stage, emotion string) int {
	e := strings.ToLower(strings.TrimSpace(emotion))
	for i, s := range stages {
		if slices.Contains(s.Emotions, e) {
			return i
		}
	}
	for _, w := range strings.Fields(e) {
		w = strings.Trim(w, ",.;:-")
		for i, s := range stages {
			if slices.Contains(s.Emotions, w) {
				return i
			}
		}
	}
	return -1
}

func (p *Processor) negativeCount(lines []Line, key string) int {
	n := 0
	for _, l := range lines {
		if l.Kind == Header && speakerKey(l.Speaker) == key && p.negative.matches(l.Emotion) {
			n++
		}
	}
	return n
}

// enforceProgression makes the resistant speaker pass through every stage of
// the level in order. Missing stages are relabelled onto unstaged lines or
// synthesised; out-of-order tags are permuted without moving lines.
func (p *Processor) enforceProgression(lines []Line, level schema.Resistance) ([]Line, Progression) {
	var prog Progression
	stages := p.rules.Stages[level]
	if len(stages) == 0 {
		log.Debug("no stages for resistance level", "level", level)
		return lines, prog
	}
	if len(lines) < p.rules.MinLines {
		log.Debug("script too short for progression", "lines", len(lines))
		return lines, prog
	}
	ranked := rankSpeakers(lines)
	if len(ranked) < 2 {
		log.Debug("progression needs two speakers", "speakers", len(ranked))
		return lines, prog
	}

	a, b := ranked[0], ranked[1]
	resistant, other := a, b
	na, nb := p.negativeCount(lines, a.key), p.negativeCount(lines, b.key)
	if nb > na || (nb == na && b.first > a.first) {
		resistant, other = b, a
	}
	prog.Resistant = resistant.name

	for s := range stages {
		if hasStage(lines, resistant.key, stages, s) {
			continue
		}
		if i := firstUnstaged(lines, resistant.key, stages); i >= 0 {
			lines[i].Emotion = stages[s].Emotions[0]
			prog.Relabeled++
			continue
		}
		lines = p.synthesize(lines, resistant, other, stages, s)
		prog.Synthesized++
	}

	var at []int
	var tags []staged
	for i, l := range lines {
		if l.Kind != Header || speakerKey(l.Speaker) != resistant.key {
			continue
		}
		if st := stageOf(stages, l.Emotion); st >= 0 {
			at = append(at, i)
			tags = append(tags, staged{stage: st, emotion: l.Emotion})
		}
	}
	slices.SortStableFunc(tags, func(x, y staged) int { return cmp.Compare(x.stage, y.stage) })
	for k, i := range at {
		if lines[i].Emotion != tags[k].emotion {
			lines[i].Emotion = tags[k].emotion
			prog.Reordered = true
		}
	}
	return lines, prog
}

type staged struct {
	stage   int
	emotion string
}

func hasStage(lines []Line, key string, stages []Stage, s int) bool {
	for _, l := range lines {
		if l.Kind == Header && speakerKey(l.Speaker) == key && stageOf(stages, l.Emotion) == s {
			return true
		}
	}
	return false
}

func firstUnstaged(lines []Line, key string, stages []Stage) int {
	for i, l := range lines {
		if l.Kind == Header && speakerKey(l.Speaker) == key && stageOf(stages, l.Emotion) < 0 {
			return i
		}
	}
	return -1
}

// synthesize inserts a header and template line for stage s after the other
// speaker's block that precedes the resistant speaker's first later-stage line.
func (p *Processor) synthesize(lines []Line, resistant, other speaker, stages []Stage, s int) []Line {
	limit := len(lines)
	for i, l := range lines {
		if l.Kind == Header && speakerKey(l.Speaker) == resistant.key && stageOf(stages, l.Emotion) > s {
			limit = i
			break
		}
	}
	at := limit
	for i := limit - 1; i >= 0; i-- {
		if lines[i].Kind == Header && speakerKey(lines[i].Speaker) == other.key {
			at = blockEnd(lines, i)
			break
		}
	}
	// Step over resistant blocks that already sit at or before this stage.
	for at < limit && lines[at].Kind == Header && speakerKey(lines[at].Speaker) == resistant.key {
		if st := stageOf(stages, lines[at].Emotion); st > s {
			break
		}
		at = blockEnd(lines, at)
	}

	text := p.pick(p.rules.StageLines[stages[s].Name])
	if text == "" {
		text = "..."
	}
	added := []Line{
		{Kind: Header, Speaker: resistant.name, Emotion: stages[s].Emotions[0]},
		{Kind: Dialogue, Text: text},
	}
	return slices.Insert(lines, at, added...)
}

func blockEnd(lines []Line, header int) int {
	i := header + 1
	for i < len(lines) && lines[i].Kind != Header {
		i++
	}
	return i
}
