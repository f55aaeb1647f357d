// Package diff reports what the post-processor changed in a script.
package diff

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/aryann/difflib"

	"hookbuilder/pkg/utils"
)

type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unchanged"
	}
}

func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

func (o Op) MarshalText() ([]byte, error) {
	return []byte([...]string{"equal", "insert", "delete"}[o]), nil
}

type WordDelta struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Change is one line of the report. Modified lines carry word-level deltas.
type Change struct {
	State  ChangeType  `json:"state"`
	Old    string      `json:"old,omitempty"`
	New    string      `json:"new,omitempty"`
	Deltas []WordDelta `json:"deltas,omitempty"`
}

type Report struct {
	Changes  []Change `json:"changes"`
	Added    int      `json:"added"`
	Removed  int      `json:"removed"`
	Modified int      `json:"modified"`
}

// Edits is the number of lines that differ.
func (r Report) Edits() int {
	return r.Added + r.Removed + r.Modified
}

// A removed and an added line this similar are reported as one modified line.
const pairThreshold = 0.70

// Lines diffs before and after line by line.
func Lines(before, after string) Report {
	recs := difflib.Diff(splitLines(before), splitLines(after))

	var r Report
	var removed, added []string
	flush := func() {
		r.hunk(removed, added)
		removed, added = removed[:0], added[:0]
	}
	for _, rec := range recs {
		switch rec.Delta {
		case difflib.LeftOnly:
			removed = append(removed, rec.Payload)
		case difflib.RightOnly:
			added = append(added, rec.Payload)
		default:
			flush()
			r.Changes = append(r.Changes, Change{State: Unchanged, Old: rec.Payload, New: rec.Payload})
		}
	}
	flush()
	return r
}

// hunk pairs each removed line with its most similar added line.
func (r *Report) hunk(removed, added []string) {
	if len(removed) == 0 && len(added) == 0 {
		return
	}
	pair := make([]int, len(added))
	for j := range pair {
		pair[j] = -1
	}
	matched := make([]bool, len(removed))
	for i, old := range removed {
		bestJ, best := -1, 0.0
		for j, s := range added {
			if pair[j] >= 0 {
				continue
			}
			if sim := utils.Similarity(old, s); sim > best {
				bestJ, best = j, sim
			}
		}
		if bestJ >= 0 && best >= pairThreshold {
			pair[bestJ] = i
			matched[i] = true
		}
	}

	for i, old := range removed {
		if !matched[i] {
			r.Changes = append(r.Changes, Change{State: Removed, Old: old})
			r.Removed++
		}
	}
	for j, s := range added {
		if i := pair[j]; i >= 0 {
			r.Changes = append(r.Changes, Change{State: Modified, Old: removed[i], New: s, Deltas: Words(removed[i], s)})
			r.Modified++
			continue
		}
		r.Changes = append(r.Changes, Change{State: Added, New: s})
		r.Added++
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Words diffs two strings word by word. Concatenating the Equal and Delete
// texts gives a, the Equal and Insert texts give b.
func Words(a, b string) []WordDelta {
	if a == b {
		return []WordDelta{{Op: Equal, Text: a}}
	}
	recs := difflib.Diff(tokenize(a), tokenize(b))
	deltas := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			deltas = append(deltas, WordDelta{Op: Equal, Text: r.Payload})
		case difflib.LeftOnly:
			deltas = append(deltas, WordDelta{Op: Delete, Text: r.Payload})
		case difflib.RightOnly:
			deltas = append(deltas, WordDelta{Op: Insert, Text: r.Payload})
		}
	}
	return mergeRuns(deltas)
}

// tokenize splits s into runs of word characters, runs of spaces, and single
// punctuation marks, so joining the tokens gives s back.
func tokenize(s string) []string {
	var out []string
	class := func(r rune) int {
		switch {
		case unicode.IsSpace(r):
			return 1
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			return 2
		default:
			return 3
		}
	}
	start, prev := 0, 0
	for i, r := range s {
		c := class(r)
		if i > start && (c != prev || c == 3) {
			out = append(out, s[start:i])
			start = i
		}
		prev = c
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func mergeRuns(in []WordDelta) []WordDelta {
	out := make([]WordDelta, 0, len(in))
	for _, d := range in {
		if n := len(out); n > 0 && out[n-1].Op == d.Op {
			out[n-1].Text += d.Text
			continue
		}
		out = append(out, d)
	}
	return out
}

// String renders the report as a unified-style listing without context trimming.
func (r Report) String() string {
	var b strings.Builder
	for _, c := range r.Changes {
		switch c.State {
		case Unchanged:
			fmt.Fprintf(&b, "  %s\n", c.New)
		case Added:
			fmt.Fprintf(&b, "+ %s\n", c.New)
		case Removed:
			fmt.Fprintf(&b, "- %s\n", c.Old)
		case Modified:
			fmt.Fprintf(&b, "- %s\n+ %s\n", c.Old, c.New)
		}
	}
	return b.String()
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	fgYellow  = "\x1b[33m"
	faint     = "\x1b[2m"
	uline     = "\x1b[4m"
	strike    = "\x1b[9m"
)

func renderDeltas(deltas []WordDelta) string {
	var b strings.Builder
	for _, d := range deltas {
		switch d.Op {
		case Equal:
			b.WriteString(d.Text)
		case Insert:
			fmt.Fprintf(&b, "%s%s%s%s", fgGreen, uline, d.Text, ansiReset)
		case Delete:
			fmt.Fprintf(&b, "%s%s%s%s", fgRed, strike, d.Text, ansiReset)
		}
	}
	return b.String()
}

// Print writes the changed lines in colour for a terminal. Unchanged lines are skipped.
func (r Report) Print(w io.Writer) {
	for _, c := range r.Changes {
		switch c.State {
		case Added:
			fmt.Fprintf(w, "%s[+]%s %s%s%s\n", fgGreen, ansiReset, uline, c.New, ansiReset)
		case Removed:
			fmt.Fprintf(w, "%s[-]%s %s%s%s\n", fgRed, ansiReset, strike, c.Old, ansiReset)
		case Modified:
			fmt.Fprintf(w, "%s[~]%s %s\n", fgYellow, ansiReset, renderDeltas(c.Deltas))
		}
	}
	fmt.Fprintf(w, "%s%d added, %d removed, %d modified%s\n", faint, r.Added, r.Removed, r.Modified, ansiReset)
}
