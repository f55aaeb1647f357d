package script

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanGlyphs normalises to NFC and strips control and format characters,
// replacement glyphs and variation selectors. Newlines survive; tabs become spaces.
func CleanGlyphs(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case r == unicode.ReplacementChar, r == '\uFE0E', r == '\uFE0F':
			return -1
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
}

var (
	curlyApostrophe   = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")
	spacedContraction = regexp.MustCompile(`(\pL)(?: +' *|' +)(s|t|re|ve|ll|d|m)\b`)
	spaceBeforePunct  = regexp.MustCompile(` +([,.!?;:])`)
	multiSpace        = regexp.MustCompile(` {2,}`)
)

// NormalizePunctuation fixes spacing around punctuation and contraction
// apostrophes line by line. Applying it to its own output changes nothing.
func NormalizePunctuation(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = curlyApostrophe.Replace(line)
		line = spacedContraction.ReplaceAllString(line, "$1'$2")
		line = spaceBeforePunct.ReplaceAllString(line, "$1")
		line = spaceAfterPunct(line)
		line = multiSpace.ReplaceAllString(line, " ")
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

// spaceAfterPunct puts a space between , ; : ! ? and a following letter, and
// between a sentence-ending period and a capital when a word precedes it.
func spaceAfterPunct(s string) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs)+4)
	for i, r := range rs {
		out = append(out, r)
		if i+1 >= len(rs) || !unicode.IsLetter(rs[i+1]) {
			continue
		}
		switch {
		case strings.ContainsRune(",;:!?", r):
			out = append(out, ' ')
		case r == '.' && unicode.IsUpper(rs[i+1]) && i >= 2 && unicode.IsLetter(rs[i-1]) && unicode.IsLetter(rs[i-2]):
			out = append(out, ' ')
		}
	}
	return string(out)
}

var (
	capsHeader    = regexp.MustCompile(`^([A-Z][A-Z0-9 .'\-]{1,40}?)\s*(?:\(([^()]*)\))?\s*:\s*(.*)$`)
	namedHeader   = regexp.MustCompile(`^(\p{Lu}[\pL'\-]*(?: \p{Lu}[\pL'\-]*){0,2})\s*\(([^()]*)\)\s*:\s*(.*)$`)
	quotedTrailer = regexp.MustCompile(`^["“”](.+?)["“”]\s*(\([^()]*\)|\[[^\[\]]*\])\s*$`)
	titleLine     = regexp.MustCompile(`(?i)^(?:#+\s*|title\s*:|script\s*:)`)
	italicLine    = regexp.MustCompile(`^(?:\*([^*]+)\*|_([^_]+)_)$`)
)

// Labels that look like caps headers but never name a speaker.
var nonSpeakers = map[string]bool{
	"title": true, "scene": true, "setting": true, "note": true, "notes": true,
	"music": true, "music recommendation": true, "int.": true, "ext.": true,
	"cut to": true, "fade in": true, "fade out": true, "end": true, "hook": true,
}

type classifier struct {
	out     []Line
	speaker string
	pending bool

	// marked holds the speakers of marker headers, nil when the text has none.
	marked map[string]bool
}

func classify(text string) []Line {
	rows := strings.Split(text, "\n")
	c := &classifier{marked: markedSpeakers(rows)}
	for _, raw := range rows {
		c.line(raw)
	}
	return c.out
}

func markedSpeakers(rows []string) map[string]bool {
	var names map[string]bool
	for _, raw := range rows {
		if !strings.Contains(raw, Marker) {
			continue
		}
		if names == nil {
			names = map[string]bool{}
		}
		if name, _, _ := splitHeader(strings.TrimSpace(markerBody(raw))); name != "" {
			names[speakerKey(name)] = true
		}
	}
	return names
}

func markerBody(line string) string {
	return strings.ReplaceAll(strings.ReplaceAll(line, "*", ""), Marker, "")
}

// unmarkedHeader reports whether a "NAME:" or "Name (emotion):" line without
// the marker is a header. Once the text uses the marker, such a line must open
// a block and name a known speaker; otherwise it is dialogue.
func (c *classifier) unmarkedHeader(body string) bool {
	if c.marked == nil {
		return true
	}
	if !c.pending && c.speaker != "" {
		return false
	}
	name, _, _ := splitHeader(body)
	return name != "" && c.marked[speakerKey(name)]
}

func (c *classifier) emit(l Line) {
	if l.Kind == StageDirection && c.pending {
		l.detached = true
	}
	c.pending = false
	c.out = append(c.out, l)
}

func (c *classifier) line(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		c.pending = true
		return
	}
	if !hasLetter(line) {
		return
	}

	if strings.Contains(line, Marker) {
		c.header(markerBody(line))
		return
	}

	bare := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
	if m := capsHeader.FindStringSubmatch(bare); m != nil && hasLetter(m[1]) {
		label := strings.ToLower(strings.TrimSpace(m[1]))
		switch {
		case label == "title":
			return
		case nonSpeakers[label]:
			c.emit(Line{Kind: StageDirection, Text: "(" + bare + ")"})
			return
		}
		if c.unmarkedHeader(bare) {
			c.header(bare)
			return
		}
	} else if namedHeader.MatchString(bare) && !nonSpeakers[strings.ToLower(strings.TrimSpace(strings.SplitN(bare, "(", 2)[0]))] && c.unmarkedHeader(bare) {
		c.header(bare)
		return
	}

	if isBracketed(bare) {
		c.emit(Line{Kind: StageDirection, Text: bare})
		return
	}
	if m := italicLine.FindStringSubmatch(line); m != nil {
		c.emit(Line{Kind: StageDirection, Text: "(" + strings.TrimSpace(m[1]+m[2]) + ")"})
		return
	}

	if c.speaker == "" {
		// Prose before anyone speaks is scene setting. Titles are dropped.
		if titleLine.MatchString(line) || (strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**")) {
			return
		}
		c.emit(Line{Kind: StageDirection, Text: "(" + strings.Trim(bare, "()[] ") + ")"})
		return
	}
	c.dialogue(bare)
}

func (c *classifier) header(body string) {
	name, emotion, rest := splitHeader(strings.TrimSpace(body))
	if name == "" {
		name = c.speaker
	}
	if name == "" {
		name = "Speaker"
	}
	if emotion == "" && strings.HasPrefix(rest, "(") {
		if end := strings.IndexByte(rest, ')'); end > 0 && len(strings.Fields(rest[1:end])) <= 3 {
			emotion = rest[1:end]
			rest = strings.TrimSpace(rest[end+1:])
		}
	}
	if strings.TrimSpace(emotion) == "" {
		emotion = "neutral"
	}
	c.speaker = name
	c.emit(Line{Kind: Header, Speaker: name, Emotion: strings.TrimSpace(emotion)})
	if rest != "" {
		c.dialogue(rest)
	}
}

func (c *classifier) dialogue(text string) {
	if m := quotedTrailer.FindStringSubmatch(text); m != nil {
		c.emit(Line{Kind: Dialogue, Text: strings.TrimSpace(m[1])})
		c.emit(Line{Kind: StageDirection, Text: m[2]})
		return
	}
	text = stripQuotes(text)
	if text == "" {
		return
	}
	if isBracketed(text) {
		c.emit(Line{Kind: StageDirection, Text: text})
		return
	}
	c.emit(Line{Kind: Dialogue, Text: text})
}

// splitHeader cuts "Name (emotion): rest" at the first colon outside brackets.
func splitHeader(body string) (name, emotion, rest string) {
	head := body
	if i := topLevelColon(body); i >= 0 {
		head, rest = body[:i], strings.TrimSpace(body[i+1:])
	}
	if open := strings.IndexByte(head, '('); open >= 0 {
		name = head[:open]
		if end := strings.IndexByte(head[open:], ')'); end > 0 {
			emotion = head[open+1 : open+end]
		} else {
			emotion = head[open+1:]
		}
	} else {
		name = head
	}
	name = strings.Trim(strings.TrimSpace(name), `"“”-–—:`)
	return strings.TrimSpace(name), strings.TrimSpace(emotion), rest
}

func topLevelColon(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for {
		r := []rune(s)
		if len(r) < 2 || !isQuote(r[0]) || !isQuote(r[len(r)-1]) {
			return s
		}
		s = strings.TrimSpace(string(r[1 : len(r)-1]))
	}
}

func isQuote(r rune) bool {
	return r == '"' || r == '“' || r == '”'
}

func isBracketed(s string) bool {
	return (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && balanced(s, '(', ')')) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && balanced(s, '[', ']'))
}

// balanced reports whether the opening bracket at s[0] closes at the last byte.
func balanced(s string, left, right rune) bool {
	depth := 0
	for i, r := range s {
		switch r {
		case left:
			depth++
		case right:
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// restructure merges consecutive dialogue, repeats the speaker header when
// dialogue follows a stage direction, and drops headers left without content.
func restructure(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	var current *Line
	for _, l := range lines {
		switch l.Kind {
		case Blank:
			continue
		case Header:
			h := l
			current = &h
		case Dialogue:
			prev := len(out) - 1
			switch {
			case prev >= 0 && out[prev].Kind == Dialogue:
				out[prev].Text = joinDialogue(out[prev].Text, l.Text)
				continue
			case prev >= 0 && out[prev].Kind == Header:
			case current != nil:
				out = append(out, *current)
			default:
				l = Line{Kind: StageDirection, Text: "(" + l.Text + ")"}
			}
		}
		out = append(out, l)
	}
	return dropEmptyHeaders(out)
}

func dropEmptyHeaders(lines []Line) []Line {
	out := lines[:0]
	for i, l := range lines {
		if l.Kind == Header && (i+1 == len(lines) || lines[i+1].Kind == Header) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func joinDialogue(a, b string) string {
	a = strings.TrimSpace(a)
	if a == "" {
		return b
	}
	if r := []rune(a); !strings.ContainsRune(".!?…,;:-—", r[len(r)-1]) {
		a += "."
	}
	return a + " " + b
}

// Parse classifies already formatted text without rewriting its content.
func Parse(text string) Script {
	return layout(restructure(classify(NormalizePunctuation(CleanGlyphs(text)))))
}
