package script

import (
	"fmt"
	"strings"
)

// Marker prefixes every character header.
const Marker = "🗣"

type Kind int

const (
	Blank Kind = iota
	Header
	Dialogue
	StageDirection
)

func (k Kind) String() string {
	switch k {
	case Header:
		return "header"
	case Dialogue:
		return "dialogue"
	case StageDirection:
		return "stage"
	default:
		return "blank"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Line is one classified line of a script. Speaker and Emotion are set on
// headers only; Text holds dialogue, or a stage direction including its brackets.
type Line struct {
	Kind    Kind   `json:"kind"`
	Speaker string `json:"speaker,omitempty"`
	Emotion string `json:"emotion,omitempty"`
	Text    string `json:"text,omitempty"`

	// detached stage directions were set apart from the previous block in the source.
	detached bool
}

func (l Line) String() string {
	switch l.Kind {
	case Header:
		return fmt.Sprintf("%s %s (%s):", Marker, l.Speaker, l.Emotion)
	case Dialogue, StageDirection:
		return l.Text
	default:
		return ""
	}
}

// Script is a processed script with blank lines only between blocks.
type Script struct {
	Lines []Line `json:"lines"`
}

func (s Script) String() string {
	var b strings.Builder
	for i, l := range s.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.String())
	}
	return b.String()
}

// Text renders the script with whitespace normalised, as Process returns it.
func (s Script) Text() string {
	return finalize(s.String())
}

// Speakers lists speakers in order of first appearance.
func (s Script) Speakers() []string {
	var out []string
	seen := map[string]bool{}
	for _, l := range s.Lines {
		if l.Kind != Header {
			continue
		}
		if k := speakerKey(l.Speaker); !seen[k] {
			seen[k] = true
			out = append(out, l.Speaker)
		}
	}
	return out
}

// layout inserts a single blank line before every block.
func layout(lines []Line) Script {
	out := make([]Line, 0, len(lines)+len(lines)/2)
	for _, l := range lines {
		startsBlock := l.Kind == Header || (l.Kind == StageDirection && l.detached)
		if startsBlock && len(out) > 0 && out[len(out)-1].Kind != Blank {
			out = append(out, Line{Kind: Blank})
		}
		out = append(out, l)
	}
	return Script{Lines: out}
}

func speakerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
