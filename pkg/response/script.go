package response

import (
	"regexp"
	"strings"

	"hookbuilder/pkg/schema"
)

// musicMarker matches the headers models use to open the music section:
// "🎵 MUSIC RECOMMENDATION:", "Music Recommendation:", "**Music Recommendation**"
// and "## Music Recommendation", alone or combined.
var musicMarker = regexp.MustCompile(`(?im)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*)?[ \t]*(?:[🎵🎶][ \t]*)?(?:\*\*)?music recommendations?[ \t]*(?:\*\*)?[ \t]*(?::|$)`)

// Script splits a completion at the earliest music marker. Without a marker the
// whole text is the script body.
func Script(raw string) schema.GeneratedScript {
	loc := musicMarker.FindStringIndex(raw)
	if loc == nil {
		return schema.GeneratedScript{Script: strings.TrimSpace(raw)}
	}
	return schema.GeneratedScript{
		Script:              strings.TrimSpace(raw[:loc[0]]),
		MusicRecommendation: strings.TrimSpace(raw[loc[0]:]),
	}
}
