package script

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"hookbuilder/pkg/utils"
)

// fixEmotion maps a header tag through the invalid-emotion table and replaces
// tags that cannot be an emotion with "neutral".
func (p *Processor) fixEmotion(tag string) string {
	e := strings.ToLower(strings.TrimSpace(tag))
	e = strings.Trim(e, " .,;:!?-–—\"'*")
	if r, ok := p.rules.InvalidEmotions[e]; ok {
		return r
	}
	words := strings.Fields(e)
	switch {
	case !hasLetter(e), strings.IndexFunc(e, unicode.IsDigit) >= 0, len(words) > 3:
		return "neutral"
	case len(words) == 1 && letterCount(e) >= 16:
		return "neutral"
	}
	return strings.Join(words, " ")
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

var (
	parenSegment   = regexp.MustCompile(`\([^()]*\)`)
	bracketSegment = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// dropEmptyParens removes bracketed segments without letters, then any stage
// direction or dialogue left empty.
func dropEmptyParens(lines []Line) []Line {
	strip := func(m string) string {
		if hasLetter(m) {
			return m
		}
		return ""
	}
	out := lines[:0]
	for _, l := range lines {
		if l.Kind == Dialogue || l.Kind == StageDirection {
			t := parenSegment.ReplaceAllStringFunc(l.Text, strip)
			t = bracketSegment.ReplaceAllStringFunc(t, strip)
			t = tidySpaces(t)
			if !hasLetter(t) {
				continue
			}
			if l.Kind == StageDirection && !isBracketed(t) {
				t = "(" + strings.Trim(t, "()[] ") + ")"
			}
			l.Text = t
		}
		out = append(out, l)
	}
	return out
}

var (
	commaBeforeEnd = regexp.MustCompile(`,+\s*([.!?])`)
	doubleComma    = regexp.MustCompile(`,(\s*,)+`)
)

func tidySpaces(s string) string {
	s = multiSpace.ReplaceAllString(s, " ")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "( ", "(")
	s = strings.ReplaceAll(s, " )", ")")
	return strings.TrimSpace(s)
}

// naturalize strips filler words and contracts stilted phrasing in dialogue.
func (p *Processor) naturalize(text string) string {
	for _, re := range p.fillers {
		text = re.ReplaceAllString(text, "")
	}
	text = tidySpaces(text)
	for _, rw := range p.contractions {
		text = rw.apply(text)
	}
	text = doubleComma.ReplaceAllString(text, ",")
	text = tidySpaces(text)
	text = commaBeforeEnd.ReplaceAllString(text, "$1")
	text = strings.TrimLeft(text, ",;: ")
	return utils.CapitalizeFirst(text)
}

type rewrite struct {
	re       *regexp.Regexp
	repl     string
	notAfter wordSet
}

// apply replaces every match not preceded by a notAfter word, keeping a
// leading capital.
func (rw rewrite) apply(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range rw.re.FindAllStringSubmatchIndex(s, -1) {
		if rw.follows(s[:m[0]]) {
			continue
		}
		out := string(rw.re.ExpandString(nil, rw.repl, s, m))
		if r, _ := utf8.DecodeRuneInString(s[m[0]:]); unicode.IsUpper(r) {
			out = utils.CapitalizeFirst(out)
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(out)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func (rw rewrite) follows(prefix string) bool {
	words := strings.Fields(prefix)
	if len(rw.notAfter) == 0 || len(words) == 0 {
		return false
	}
	return rw.notAfter.has(strings.Trim(words[len(words)-1], `,;:"'`))
}

var trailingSpace = regexp.MustCompile(`[ \t]+\n`)
var manyNewlines = regexp.MustCompile(`\n{3,}`)

// finalize trims line ends and collapses runs of blank lines.
func finalize(s string) string {
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = manyNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
