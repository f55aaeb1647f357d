package prompt

import (
	"regexp"
	"slices"
	"strings"

	"hookbuilder/pkg/utils"
)

const (
	maxKeyPoints = 5
	maxMetaphors = 3

	// Points at least this similar to one already kept are dropped.
	nearDuplicate = 0.85

	minPointWords = 3
	trimPunct     = " \t-–—.,;:!?\"'"
)

var (
	listItem    = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
	sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
	phraseBreak = regexp.MustCompile(`\s*[,;]\s*`)
	contrast    = regexp.MustCompile(`(?i)\bnot\s+(?:about\s+)?[^,.;!?]+?,?\s+but\s+[^,.;!?]+`)
	leadIn      = regexp.MustCompile(`(?i)\b(?:it[’']?s about|this is)\s+[^.!?;]+`)
)

// KeyPoints mines up to five distinct points from free-text philosophy: list
// items, "not X but Y" contrasts and "It's about"/"This is" lead-ins first, then
// sentences (or comma phrases when there is only one sentence).
func KeyPoints(philosophy string) []string {
	var points, prose []string
	for _, line := range strings.Split(philosophy, "\n") {
		if m := listItem.FindStringSubmatch(line); m != nil {
			points = append(points, m[1])
			continue
		}
		prose = append(prose, line)
	}
	text := strings.Join(strings.Fields(strings.Join(prose, " ")), " ")

	points = append(points, contrast.FindAllString(text, -1)...)
	points = append(points, leadIn.FindAllString(text, -1)...)

	sentences := sentenceEnd.Split(text, -1)
	sentences = slices.DeleteFunc(sentences, func(s string) bool { return strings.TrimSpace(s) == "" })
	if len(sentences) < 2 {
		sentences = phraseBreak.Split(text, -1)
	}
	points = append(points, sentences...)

	return distinct(points, maxKeyPoints, func(p string) bool {
		return len(strings.Fields(p)) >= minPointWords
	})
}

var (
	simile = regexp.MustCompile(`(?i)\b[a-z']+\s+(?:(?:is|are|was|feels?|looks?)\s+)?like\s+(?:a|an|the)\s+[a-z']+`)
	asAs   = regexp.MustCompile(`(?i)\bas\s+[a-z']+\s+as\s+(?:a|an|the)?\s*[a-z']+`)
	isA    = regexp.MustCompile(`(?i)\b([a-z']+)\s+(?:is|are)\s+(?:a|an)\s+[a-z']+(?:\s+of\s+[a-z']+)?`)
	idioms = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[^.!?,;:\n]*\b(?:book|chapters?|pages?)\b[^.!?,;:\n]*`),
		regexp.MustCompile(`(?i)[^.!?,;:\n]*\bmirrors?\b[^.!?,;:\n]*`),
		regexp.MustCompile(`(?i)[^.!?,;:\n]*\b(?:foundations?|building|bricks?|walls?)\b[^.!?,;:\n]*`),
		regexp.MustCompile(`(?i)[^.!?,;:\n]*\b(?:journey|road|path|crossroads)\b[^.!?,;:\n]*`),
	}
	// Subjects that make "X is a Y" literal rather than figurative.
	literalSubjects = []string{"this", "that", "it", "there", "here", "which", "what", "who", "he", "she"}
)

// Metaphors returns up to three figurative phrases found in text.
func Metaphors(text string) []string {
	var found []string
	found = append(found, simile.FindAllString(text, -1)...)
	found = append(found, asAs.FindAllString(text, -1)...)
	for _, m := range isA.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(literalSubjects, strings.ToLower(m[1])) {
			found = append(found, m[0])
		}
	}
	for _, re := range idioms {
		found = append(found, re.FindAllString(text, -1)...)
	}
	return distinct(found, maxMetaphors, func(string) bool { return true })
}

// distinct trims candidates and keeps up to limit of them, skipping exact and
// near duplicates and anything keep rejects.
func distinct(candidates []string, limit int, keep func(string) bool) []string {
	var out []string
	for _, c := range candidates {
		c = strings.Trim(strings.Join(strings.Fields(c), " "), trimPunct)
		if c == "" || !keep(c) {
			continue
		}
		dup := slices.ContainsFunc(out, func(o string) bool {
			return strings.EqualFold(o, c) || utils.Similarity(o, c) >= nearDuplicate
		})
		if dup {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}
