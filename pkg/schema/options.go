package schema

// FormOptions are the choices the hook and script forms offer.
type FormOptions struct {
	HookEmotions []string `json:"hookEmotions"`
	HookThemes   []string `json:"hookThemes"`
	HookTones    []string `json:"hookTones"`

	CharacterCounts  []int    `json:"characterCounts"`
	Tones            []string `json:"tones"`
	Themes           []string `json:"themes"`
	EmotionalArcs    []string `json:"emotionalArcs"`
	ResistanceLevels []string `json:"resistanceLevels"`
	OpeningStyles    []string `json:"openingStyles"`
	EmotionEndings   []string `json:"emotionEndings"`
	Pacings          []string `json:"pacings"`

	SinglePersonalities    []string `json:"singleCharacterPersonalities"`
	MessengerPersonalities []string `json:"messengerPersonalities"`
	ResistorPersonalities  []string `json:"resistorPersonalities"`
}

var Options = FormOptions{
	HookEmotions: []string{
		"Confusion", "Anger", "Doubt", "Sadness", "Guilt", "Frustration",
		"Loneliness", "Bitterness", "Resentment", "Peace", "Faith", "Despair",
	},
	HookThemes: []string{
		"Growth", "Religion", "God", "Masculinity", "Morality", "Mental Health",
		"Pain", "Discipline", "Truth", "Relationships", "Purpose",
	},
	HookTones: []string{
		"Calm", "Heated", "Raw", "Sarcastic", "Reflective", "Spiritual", "Dramatic", "Broken",
	},

	CharacterCounts: []int{1, 2, 3},
	Tones: []string{
		"Raw & Direct (Brutally honest, zero sugar-coating)",
		"Cold & Dismissive (Harsh truth-teller, doesn't care if it hurts)",
		"Aggressive Challenger (Confrontational, calls out weakness)",
		"Sharp Sarcasm (Cutting remarks, mocks weak thinking)",
		"Explosive Anger (Sudden bursts of raw emotion)",
		"Grounded Contempt (Calm but devastating criticism)",
		"Masculine Wisdom (Hard lessons earned through pain)",
		"Final Warning (Last chance before consequences)",
	},
	Themes: []string{
		"Masculinity", "Faith", "Trauma", "Logic vs Emotion", "Society", "Religion",
		"Family", "Ego", "Growth", "Discipline", "Self-worth", "Obsession",
		"Spiritual growth", "Mental strength", "Relationships", "Truth seeking", "Facing reality",
	},
	EmotionalArcs: []string{
		"Denial to acceptance",
		"Ignorance to understanding",
		"Ego to humility",
		"Conflict without resolution (tension remains)",
		"Explosive confrontation (truth bombs)",
		"Quiet realization (ending in reflection)",
	},
	ResistanceLevels: []string{string(ResistanceLow), string(ResistanceMedium), string(ResistanceHigh)},
	OpeningStyles: []string{
		"Start with a challenge",
		"Start with humor",
		"Start with confusion",
		"Start mid-fight",
		"Start with a question",
		"Start with a provocative statement",
	},
	EmotionEndings: []string{
		"Impact (Mic drop)",
		"Resolution (Calm, hopeful)",
		"Silence (No final line, just realization)",
	},
	Pacings: []string{"Short (30 sec)", "Medium (60-90 sec)", "Long (2-3 min)"},

	SinglePersonalities: []string{
		"Calm and reflective", "Passionate and fiery", "Cold and direct",
		"Sarcastic and witty", "Emotional but composed", "Tough but sincere",
	},
	MessengerPersonalities: []string{
		"Calm and persuasive", "Cold and logical", "Intense and passionate",
		"Sarcastic but smart", "Honest and vulnerable", "Soft-spoken but firm",
	},
	ResistorPersonalities: []string{
		"Defensive and angry", "Confused and uncertain", "Mocking and sarcastic",
		"Hurt but guarded", "Egotistical and stubborn", "Quiet and emotionally blocked",
	},
}
