package script

import (
	"fmt"

	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/utils"
)

// Stage is one step of a resistance arc. Emotions[0] is the tag used when a
// line has to be relabelled or synthesised for the stage.
type Stage struct {
	Name     string   `json:"name"`
	Emotions []string `json:"emotions"`
}

// Rewrite is a regular expression replacement applied to dialogue. A match
// directly after one of the NotAfter words is left alone.
type Rewrite struct {
	Pattern  string   `json:"pattern"`
	Replace  string   `json:"replace"`
	NotAfter []string `json:"notAfter,omitempty"`
}

// Category groups final emotions for the Resolution ending.
type Category struct {
	Name     string   `json:"name"`
	Emotions []string `json:"emotions"`
}

var whWords = []string{"who", "what", "where", "when", "why", "how", "whoever", "whatever", "wherever"}

// Rules is the content tuning of the post-processor. Every table can be
// replaced from a JSON file; fields left out keep their defaults.
type Rules struct {
	Stages     map[schema.Resistance][]Stage `json:"stages"`
	StageLines map[string][]string           `json:"stageLines"`

	NegativeEmotions []string          `json:"negativeEmotions"`
	InvalidEmotions  map[string]string `json:"invalidEmotions"`

	Fillers      []string  `json:"fillers"`
	Contractions []Rewrite `json:"contractions"`

	PowerWords       []string `json:"powerWords"`
	PowerTails       []string `json:"powerTails"`
	ResoluteEmotions []string `json:"resoluteEmotions"`

	SoftWords          []string            `json:"softWords"`
	SoftEmotions       []string            `json:"softEmotions"`
	ResolutionCategory []Category          `json:"resolutionCategories"`
	ResolutionLines    map[string][]string `json:"resolutionLines"`

	SilenceDirections []string `json:"silenceDirections"`

	// MinLines is the number of non-blank lines below which the structural passes do nothing.
	MinLines       int     `json:"minLines"`
	MaxImpactWords int     `json:"maxImpactWords"`
	TruncateWords  int     `json:"truncateWords"`
	SwapThreshold  int     `json:"swapThreshold"`
	ExclaimBias    float64 `json:"exclaimBias"`
}

func DefaultRules() Rules {
	return Rules{
		Stages: map[schema.Resistance][]Stage{
			schema.ResistanceLow: {
				{Name: "early", Emotions: []string{"curious", "skeptical", "uncertain", "hesitant", "doubtful"}},
				{Name: "considering", Emotions: []string{"considering", "thoughtful", "intrigued", "pondering"}},
				{Name: "understanding", Emotions: []string{"understanding", "realizing", "reflective", "open"}},
				{Name: "accepting", Emotions: []string{"accepting", "grateful", "resolved", "humbled"}},
			},
			schema.ResistanceMedium: {
				{Name: "early", Emotions: []string{"resistant", "skeptical", "defensive", "dismissive", "doubtful"}},
				{Name: "challenged", Emotions: []string{"frustrated", "irritated", "agitated", "annoyed"}},
				{Name: "questioning", Emotions: []string{"uncertain", "questioning", "confused", "hesitant"}},
				{Name: "opening", Emotions: []string{"thoughtful", "considering", "softening", "reflective"}},
				{Name: "accepting", Emotions: []string{"accepting", "understanding", "resolved", "humbled"}},
			},
			schema.ResistanceHigh: {
				{Name: "denial", Emotions: []string{"dismissive", "mocking", "sarcastic", "scoffing"}},
				{Name: "defensive", Emotions: []string{"defensive", "resistant", "guarded", "skeptical"}},
				{Name: "angry", Emotions: []string{"angry", "hostile", "furious", "heated"}},
				{Name: "shaken", Emotions: []string{"shaken", "rattled", "unsettled", "stunned"}},
				{Name: "doubting", Emotions: []string{"doubtful", "uncertain", "confused", "conflicted"}},
				{Name: "vulnerable", Emotions: []string{"vulnerable", "hurt", "exposed", "raw"}},
				{Name: "realizing", Emotions: []string{"realizing", "thoughtful", "reflective", "quiet"}},
				{Name: "accepting", Emotions: []string{"accepting", "humbled", "resolved", "understanding"}},
			},
		},
		StageLines: map[string][]string{
			"early":         {"I don't buy it. Not even a little.", "That sounds nice, but it's not how life works.", "You really believe that?"},
			"considering":   {"Okay... say that again.", "I never looked at it that way.", "Maybe there's something to that."},
			"understanding": {"So that's what I've been missing.", "I think I finally see it.", "It makes sense now."},
			"accepting":     {"You're right. I've been running from this.", "I can't pretend anymore.", "Okay. I hear you."},
			"challenged":    {"Why does that get under my skin?", "Stop. Just stop.", "You don't know what I've been through."},
			"questioning":   {"Then what am I supposed to do?", "Wait... what are you saying?", "How is that even possible?"},
			"opening":       {"Maybe I've been looking at it wrong.", "I guess I never let myself think about it.", "Go on. I'm listening."},
			"denial":        {"Please. That's the dumbest thing I've heard all day.", "Spare me the speech.", "Yeah, right."},
			"defensive":     {"Don't put this on me.", "I'm not the problem here.", "You don't get to judge me."},
			"angry":         {"Who are you to tell me that?", "Enough! I'm done listening to this.", "You think I don't know that?"},
			"shaken":        {"Why did that hit so hard?", "I... I don't know what to say.", "That's not... that can't be right."},
			"doubting":      {"What if I've had it wrong this whole time?", "I don't know what to believe anymore.", "Then what was all of it for?"},
			"vulnerable":    {"I've been scared my whole life.", "I just didn't want to feel it.", "Nobody ever asked me that."},
			"realizing":     {"It was never about them. It was me.", "I've been my own excuse.", "So I was the one holding the door shut."},
		},

		NegativeEmotions: []string{
			"defensive", "angry", "dismissive", "resistant", "skeptical", "hostile", "frustrated",
			"mocking", "sarcastic", "annoyed", "irritated", "scoffing", "doubtful", "bitter",
			"guarded", "contemptuous", "stubborn", "agitated", "furious", "heated",
		},
		InvalidEmotions: map[string]string{
			"pause":           "hesitant",
			"pauses":          "hesitant",
			"pausing":         "hesitant",
			"pausestruggling": "struggling",
			"beat":            "thoughtful",
			"a beat":          "thoughtful",
			"silence":         "quiet",
			"silent":          "quiet",
			"laughs":          "amused",
			"laughing":        "amused",
			"sighs":           "weary",
			"sighing":         "weary",
			"continuing":      "neutral",
			"continued":       "neutral",
			"cont'd":          "neutral",
			"contd":           "neutral",
			"v.o":             "neutral",
			"o.s":             "neutral",
			"n/a":             "neutral",
			"none":            "neutral",
			"emotion":         "neutral",
			"same":            "neutral",
			"unknown":         "neutral",
			"to himself":      "quiet",
			"to herself":      "quiet",
			"to themselves":   "quiet",
			"interrupting":    "urgent",
			"cutting in":      "urgent",
			"looks away":      "guarded",
			"looking away":    "guarded",
			"voice cracking":  "vulnerable",
			"voicecracking":   "vulnerable",
			"tearing up":      "hurt",
			"tearsup":         "hurt",
			"smirks":          "mocking",
			"smirking":        "mocking",
			"scoffs":          "scoffing",
			"shrugs":          "dismissive",
			"shrugging":       "dismissive",
		},

		Fillers: []string{
			`(?i)\b(?:um+|uh+|erm+|hmm+)\b[,.…]*`,
			`(?i)\byou know,`,
			`(?i)\bbasically,?`,
			`(?i)\bliterally,?`,
			`(?i)\bI mean,`,
			`(?i)\blike,`,
		},
		// "who I am" and "what it is" end a clause and stay whole.
		Contractions: []Rewrite{
			{Pattern: `(?i)\b(I|you|we|they|he|she|it) will not\b`, Replace: "$1 won't"},
			{Pattern: `(?i)\bI am (\w)`, Replace: "I'm $1", NotAfter: whWords},
			{Pattern: `(?i)\bI will (\w)`, Replace: "I'll $1"},
			{Pattern: `(?i)\bI have (been|got|had|seen|done|never|always|tried)\b`, Replace: "I've $1"},
			{Pattern: `(?i)\b(you|we|they) are (\w)`, Replace: "$1're $2", NotAfter: whWords},
			{Pattern: `(?i)\b(it|that|there) is (\w)`, Replace: "$1's $2", NotAfter: whWords},
			{Pattern: `(?i)\bdo not\b`, Replace: "don't"},
			{Pattern: `(?i)\bdoes not\b`, Replace: "doesn't"},
			{Pattern: `(?i)\bdid not\b`, Replace: "didn't"},
			{Pattern: `(?i)\bis not\b`, Replace: "isn't"},
			{Pattern: `(?i)\bare not\b`, Replace: "aren't"},
			{Pattern: `(?i)\bwas not\b`, Replace: "wasn't"},
			{Pattern: `(?i)\bwere not\b`, Replace: "weren't"},
			{Pattern: `(?i)\bcan ?not\b`, Replace: "can't"},
			{Pattern: `(?i)\bwill not\b`, Replace: "won't"},
			{Pattern: `(?i)\bwould not\b`, Replace: "wouldn't"},
			{Pattern: `(?i)\bshould not\b`, Replace: "shouldn't"},
			{Pattern: `(?i)\bcould not\b`, Replace: "couldn't"},
			{Pattern: `(?i)\bhave not\b`, Replace: "haven't"},
			{Pattern: `(?i)\bhas not\b`, Replace: "hasn't"},
		},

		PowerWords: []string{
			"truth", "never", "always", "now", "real", "today", "choose", "stop", "power", "fight",
			"enough", "rise", "strong", "free", "face", "change", "everything", "nothing", "must",
			"done", "lie", "lies", "pain", "god", "faith", "fear", "own", "win", "become",
		},
		PowerTails: []string{"now", "today", "for real"},
		ResoluteEmotions: []string{
			"resolute", "determined", "firm", "defiant", "fierce",
			"unshakable", "certain", "steely", "commanding", "intense",
		},

		SoftWords: []string{
			"peace", "hope", "grow", "heal", "learn", "understand", "begin", "home", "light",
			"grace", "free", "together", "rest", "forgive", "trust", "love", "breathe", "enough",
		},
		SoftEmotions: []string{"calm", "hopeful", "gentle", "warm", "serene"},
		ResolutionCategory: []Category{
			{Name: "release", Emotions: []string{"angry", "defensive", "hostile", "furious", "frustrated", "bitter", "heated", "resistant"}},
			{Name: "healing", Emotions: []string{"hurt", "vulnerable", "sad", "broken", "raw", "exposed", "shaken"}},
			{Name: "reflection", Emotions: []string{"thoughtful", "reflective", "realizing", "quiet", "understanding", "considering"}},
		},
		ResolutionLines: map[string][]string{
			"release":    {"Maybe I can finally let it go.", "I don't have to carry this anymore.", "I'm ready to put it down."},
			"healing":    {"It still hurts, but maybe that's how healing starts.", "I think I can breathe again.", "Maybe this is where I begin."},
			"reflection": {"I have a lot to think about.", "Maybe that's where the peace was all along.", "I think I understand now."},
			"hope":       {"Maybe tomorrow looks different.", "One step at a time, then.", "I think there's hope for me yet."},
		},

		SilenceDirections: []string{
			"(A long silence. Neither of them speaks.)",
			"(Silence. The weight of the words hangs in the air.)",
			"(Neither moves. The silence says everything.)",
			"(The room goes quiet. Only breathing.)",
			"(A long pause. Eyes meet, then drop.)",
			"(Stillness. The truth lands without a sound.)",
		},

		MinLines:       6,
		MaxImpactWords: 10,
		TruncateWords:  8,
		SwapThreshold:  6,
		ExclaimBias:    0.6,
	}
}

// LoadRules reads rules from a JSON file on top of DefaultRules.
func LoadRules(path string) (Rules, error) {
	r, err := utils.Load[Rules](path)
	if err != nil {
		return Rules{}, fmt.Errorf("loading script rules: %w", err)
	}
	return r.withDefaults(), nil
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if len(r.Stages) == 0 {
		r.Stages = d.Stages
	}
	if len(r.StageLines) == 0 {
		r.StageLines = d.StageLines
	}
	if len(r.NegativeEmotions) == 0 {
		r.NegativeEmotions = d.NegativeEmotions
	}
	if len(r.InvalidEmotions) == 0 {
		r.InvalidEmotions = d.InvalidEmotions
	}
	if r.Fillers == nil {
		r.Fillers = d.Fillers
	}
	if r.Contractions == nil {
		r.Contractions = d.Contractions
	}
	if len(r.PowerWords) == 0 {
		r.PowerWords = d.PowerWords
	}
	if len(r.PowerTails) == 0 {
		r.PowerTails = d.PowerTails
	}
	if len(r.ResoluteEmotions) == 0 {
		r.ResoluteEmotions = d.ResoluteEmotions
	}
	if len(r.SoftWords) == 0 {
		r.SoftWords = d.SoftWords
	}
	if len(r.SoftEmotions) == 0 {
		r.SoftEmotions = d.SoftEmotions
	}
	if len(r.ResolutionCategory) == 0 {
		r.ResolutionCategory = d.ResolutionCategory
	}
	if len(r.ResolutionLines) == 0 {
		r.ResolutionLines = d.ResolutionLines
	}
	if len(r.SilenceDirections) == 0 {
		r.SilenceDirections = d.SilenceDirections
	}
	if r.MinLines <= 0 {
		r.MinLines = d.MinLines
	}
	if r.MaxImpactWords <= 0 {
		r.MaxImpactWords = d.MaxImpactWords
	}
	if r.TruncateWords <= 0 || r.TruncateWords > r.MaxImpactWords-2 {
		r.TruncateWords = max(1, min(d.TruncateWords, r.MaxImpactWords-2))
	}
	if r.SwapThreshold <= 0 {
		r.SwapThreshold = d.SwapThreshold
	}
	if r.ExclaimBias <= 0 || r.ExclaimBias > 1 {
		r.ExclaimBias = d.ExclaimBias
	}
	return r
}
