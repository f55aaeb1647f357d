package prompt

import (
	"fmt"
	"strings"

	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/utils"
)

const scriptSystemPrompt = `You are a scriptwriter for short, cinematic, dialogue-driven videos about deep emotional and philosophical topics. Your scripts feel like real, unscripted conversations between people who are struggling with something true.

**Structure:**
- Open on the first line of dialogue. No narrator, no title card, no scene-setting paragraph.
- Build tension through conflict between the characters, not through exposition.
- One character carries the idea (the messenger); the other pushes back (the resistor). The resistor changes gradually and believably.
- Include exactly one "breakthrough line": a raw, unscripted-feeling moment where a character says something they did not plan to say. It must sound spoken, not written.
- End according to the requested ending style.

**Tone:**
- Raw and grounded. People interrupt, deflect, and talk past each other.
- Short sentences. Contractions. No speeches longer than three sentences.
- No therapy-speak, no motivational-poster language, no hashtags, no emojis inside dialogue.

**Forbidden clichés:**
- "At the end of the day", "Everything happens for a reason", "You've got this", "Trust the process", "Stay strong", "It is what it is", "Live your truth".
- Characters announcing their own feelings ("I feel so angry right now").
- Neat moral summaries in the final line.

**Metaphors:**
- Use at most two metaphors in the whole script, and only if they come from the creator's own philosophy.
- Never stack metaphors in the same line. Never explain a metaphor after using it.

**Endings:**
- Impact: finish on a short, hard line (ten words or fewer) that lands like a mic drop.
- Resolution: finish calm and hopeful, with a quiet sense that something has shifted.
- Silence: finish without a final line. The last line is a stage direction describing a profound silence.

**Formatting:**
- Every spoken line starts with a character header on its own line: 🗣 Name (emotion):
- The dialogue goes on the next line, without quotation marks.
- The emotion in parentheses is one or two plain words (defensive, quiet, angry, hopeful).
- Stage directions go on their own line in parentheses, e.g. (He looks away.)
- Leave one blank line between character blocks.
- After the script, add a section that starts with "🎵 MUSIC RECOMMENDATION:" followed by one or two sentences describing the music mood, tempo and instrumentation.`

var resistanceInstructions = map[schema.Resistance]string{
	schema.ResistanceLow: `The resistor is open but unsure. Move them through these stages in order:
1. Early: skeptical, hesitant
2. Considering: curious, thinking it over
3. Understanding: something clicks
4. Accepting: quietly agrees`,
	schema.ResistanceMedium: `The resistor pushes back for real before giving ground. Move them through these stages in order:
1. Early: resistant, skeptical, defensive
2. Challenged: frustrated, irritated
3. Questioning: uncertain, confused
4. Opening: reflective, considering
5. Accepting: understanding, at peace`,
	schema.ResistanceHigh: `The resistor fights hard and breaks late. Move them through these stages in order:
1. Denial: dismissive, mocking
2. Defensive: guarded, justifying
3. Angry: hostile, lashing out
4. Shaken: stunned, thrown off
5. Doubting: uncertain, wavering
6. Vulnerable: hurt, exposed
7. Realizing: quiet, reflective
8. Accepting: humbled, at peace
Do not skip stages. Each shift must be earned by something the other character says.`,
}

var openingInstructions = map[string]string{
	"challenge":   "Open with one character directly challenging the other's belief or behavior.",
	"humor":       "Open with a dry or sarcastic joke that hides something painful underneath.",
	"confusion":   "Open mid-thought, with one character confused by something the other just said or did.",
	"mid-fight":   "Open in the middle of an argument that is already heated. No build-up.",
	"question":    "Open with a pointed question that the other character does not want to answer.",
	"provocative": "Open with a provocative statement that sounds wrong at first and makes the viewer stay.",
}

var endingInstructions = map[schema.Ending]string{
	schema.EndingImpact:     "End on a mic-drop line: ten words or fewer, resolute, with no explanation after it.",
	schema.EndingResolution: "End calm and hopeful. The last line is soft and reflective, not a lesson.",
	schema.EndingSilence:    "End without a final line of dialogue. The script closes on a stage direction describing a long, heavy silence.",
}

var pacingInstructions = map[schema.Pacing]string{
	schema.PacingShort:  "Keep it to about 30 seconds: 6 to 8 lines of dialogue.",
	schema.PacingMedium: "Aim for 60 to 90 seconds: 10 to 16 lines of dialogue.",
	schema.PacingLong:   "Aim for 2 to 3 minutes: 18 to 28 lines of dialogue, with room for silences.",
}

// openingKey maps a form label such as "Start with a question" to its instruction key.
func openingKey(style string) string {
	for key := range openingInstructions {
		if utils.StringContains(style, false, key) {
			return key
		}
	}
	return "challenge"
}

// Script builds the generation prompt for a brief. The brief is assumed normalized and validated.
func Script(brief schema.ScriptBrief) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a script titled \"%s\".\n\n", brief.Title)

	sb.WriteString("**Philosophy:**\n")
	sb.WriteString(brief.Philosophy)
	sb.WriteString("\n\n")

	if points := KeyPoints(brief.Philosophy); len(points) > 0 {
		sb.WriteString("**Key points the script must land:**\n")
		for _, p := range points {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}
	if metaphors := Metaphors(brief.Philosophy); len(metaphors) > 0 {
		sb.WriteString("**Metaphors the creator already uses (use at most one, do not explain it):**\n")
		for _, m := range metaphors {
			fmt.Fprintf(&sb, "- %s\n", m)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("**Characters:**\n")
	fmt.Fprintf(&sb, "- Number of characters: %d\n", brief.NumCharacters)
	fmt.Fprintf(&sb, "- Roles: %s\n", brief.CharacterRoles)
	sb.WriteString(personalitySection(brief))
	sb.WriteString("\n")

	sb.WriteString("**Style:**\n")
	fmt.Fprintf(&sb, "- Tone: %s\n", brief.Tone)
	fmt.Fprintf(&sb, "- Themes: %s\n", strings.Join(brief.Themes, ", "))
	fmt.Fprintf(&sb, "- Emotional arc: %s\n", brief.EmotionalArc)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "**Resistance (%s):**\n%s\n\n", brief.ResistanceLevel, resistanceInstructions[schema.ParseResistance(string(brief.ResistanceLevel))])
	fmt.Fprintf(&sb, "**Opening:** %s\n", openingInstructions[openingKey(brief.OpeningStyle)])
	fmt.Fprintf(&sb, "**Ending:** %s\n", endingInstructions[brief.Ending()])
	fmt.Fprintf(&sb, "**Pacing:** %s\n", pacingInstructions[schema.ParsePacing(brief.Pacing)])

	if brief.HookDirective != "" {
		fmt.Fprintf(&sb, "\nThe first line must work as this hook: %s\n", brief.HookDirective)
	}
	if brief.FinalMicDrop != "" {
		fmt.Fprintf(&sb, "\nUse this as the final line, word for word: %s\n", brief.FinalMicDrop)
	}
	if brief.CreatorNote != "" {
		fmt.Fprintf(&sb, "\nNote from the creator: %s\n", brief.CreatorNote)
	}

	sb.WriteString("\nFollow the formatting rules exactly and finish with the music recommendation section.")
	return Prompt{System: scriptSystemPrompt, User: sb.String()}
}

func personalitySection(brief schema.ScriptBrief) string {
	p := brief.Personalities
	var lines []string
	add := func(label, v string) {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, v))
		}
	}
	switch brief.NumCharacters {
	case 1:
		add("Personality", p.Character1)
		lines = append(lines, "- This is a monologue. The character argues with themselves; the resistance is internal.")
	case 3:
		add("Character 1 personality", p.Character1)
		add("Character 2 personality", p.Character2)
		add("Character 3 personality", p.Character3)
		lines = append(lines, "- One character resists; the other two approach them from different angles.")
	default:
		add("Messenger personality", p.Messenger)
		add("Resistor personality", p.Resistor)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
