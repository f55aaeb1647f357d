package schema

import (
	"strings"
	"time"
)

type Resistance string

const (
	ResistanceLow    Resistance = "Low"
	ResistanceMedium Resistance = "Medium"
	ResistanceHigh   Resistance = "High"
)

// ParseResistance accepts the bare level or any label starting with it. Unknown values are Medium.
func ParseResistance(s string) Resistance {
	switch strings.ToLower(firstWord(s)) {
	case "low":
		return ResistanceLow
	case "high":
		return ResistanceHigh
	default:
		return ResistanceMedium
	}
}

type Ending string

const (
	EndingImpact     Ending = "Impact"
	EndingResolution Ending = "Resolution"
	EndingSilence    Ending = "Silence"
)

// ParseEnding maps form labels such as "Impact (Mic drop)" to an Ending. Unknown values are Impact.
func ParseEnding(s string) Ending {
	switch strings.ToLower(firstWord(s)) {
	case "resolution":
		return EndingResolution
	case "silence":
		return EndingSilence
	default:
		return EndingImpact
	}
}

type Pacing string

const (
	PacingShort  Pacing = "Short"
	PacingMedium Pacing = "Medium"
	PacingLong   Pacing = "Long"
)

func ParsePacing(s string) Pacing {
	switch strings.ToLower(firstWord(s)) {
	case "short":
		return PacingShort
	case "long":
		return PacingLong
	default:
		return PacingMedium
	}
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " (-"); i > 0 {
		return s[:i]
	}
	return s
}

// Personalities describe each speaker. Which fields apply depends on NumCharacters:
// one character uses Character1, two use Messenger and Resistor, three use Character1..3.
type Personalities struct {
	Messenger  string `json:"messengerPersonality,omitempty"`
	Resistor   string `json:"resistorPersonality,omitempty"`
	Character1 string `json:"character1Personality,omitempty"`
	Character2 string `json:"character2Personality,omitempty"`
	Character3 string `json:"character3Personality,omitempty"`
}

type ScriptBrief struct {
	Title          string   `json:"title,omitempty"`
	Philosophy     string   `json:"philosophy" validate:"required"`
	NumCharacters  int      `json:"numCharacters" validate:"min=1,max=3"`
	CharacterRoles string   `json:"characterRoles" validate:"required"`
	Tone           string   `json:"tone" validate:"required"`
	Themes         []string `json:"themes" validate:"min=1"`
	EmotionalArc   string   `json:"emotionalArc" validate:"required"`
	HookDirective  string   `json:"hookDirective,omitempty"`
	FinalMicDrop   string   `json:"finalMicDrop,omitempty"`
	CreatorNote    string   `json:"creatorNote,omitempty" validate:"max=700"`

	ResistanceLevel Resistance `json:"resistanceLevel,omitempty"`
	OpeningStyle    string     `json:"openingStyle,omitempty"`
	EmotionEnding   string     `json:"emotionEnding,omitempty"`
	Pacing          string     `json:"pacing,omitempty"`
	Personalities
}

// Normalize trims free text and fills the defaults the form would have preselected.
func (b ScriptBrief) Normalize() ScriptBrief {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		b.Title = "Untitled Script"
	}
	b.Philosophy = strings.TrimSpace(b.Philosophy)
	b.CharacterRoles = strings.TrimSpace(b.CharacterRoles)
	b.Tone = strings.TrimSpace(b.Tone)
	b.EmotionalArc = strings.TrimSpace(b.EmotionalArc)
	b.HookDirective = strings.TrimSpace(b.HookDirective)
	b.FinalMicDrop = strings.TrimSpace(b.FinalMicDrop)
	b.CreatorNote = strings.TrimSpace(b.CreatorNote)
	if b.NumCharacters == 0 {
		b.NumCharacters = 2
	}
	b.ResistanceLevel = ParseResistance(string(b.ResistanceLevel))
	if b.OpeningStyle == "" {
		b.OpeningStyle = "Start with a challenge"
	}
	if b.EmotionEnding == "" {
		b.EmotionEnding = "Impact (Mic drop)"
	}
	if b.Pacing == "" {
		b.Pacing = "Medium (60-90 sec)"
	}
	themes := b.Themes[:0:0]
	for _, t := range b.Themes {
		if t = strings.TrimSpace(t); t != "" {
			themes = append(themes, t)
		}
	}
	b.Themes = themes
	return b
}

func (b ScriptBrief) Ending() Ending {
	return ParseEnding(b.EmotionEnding)
}

type GeneratedScript struct {
	Script              string `json:"script"`
	MusicRecommendation string `json:"musicRecommendation,omitempty"`
}

type SavedScript struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	CreatedAt time.Time `json:"timestamp"`

	ScriptBrief
	ScriptContent              string `json:"scriptContent" validate:"required"`
	MusicRecommendationContent string `json:"musicRecommendationContent,omitempty"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
