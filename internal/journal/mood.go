package journal

import "strings"

// Mood classifies the overall tone of a day. The set is closed: anything a
// backend emits outside it is coerced to MoodCalm before storage.
type Mood string

const (
	MoodEnergised Mood = "energised"
	MoodTired     Mood = "tired"
	MoodActive    Mood = "active"
	MoodCautious  Mood = "cautious"
	MoodRested    Mood = "rested"
	MoodQuiet     Mood = "quiet"
	MoodCalm      Mood = "calm"
)

// ValidMood returns true if m is a recognised mood.
func ValidMood(m Mood) bool {
	switch m {
	case MoodEnergised, MoodTired, MoodActive, MoodCautious, MoodRested, MoodQuiet, MoodCalm:
		return true
	}
	return false
}

// NormalizeMood maps arbitrary input onto the closed mood set. Valid values
// pass through trimmed and lowercased; everything else, including the empty
// string, becomes MoodCalm. The function is total and idempotent.
func NormalizeMood(s string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if ValidMood(m) {
		return m
	}
	return MoodCalm
}

// DefaultEmoji returns a display emoji for a mood, used when a generated
// entry arrives without one.
func DefaultEmoji(m Mood) string {
	switch m {
	case MoodEnergised:
		return "⚡"
	case MoodTired:
		return "😴"
	case MoodActive:
		return "🏃"
	case MoodCautious:
		return "🤔"
	case MoodRested:
		return "🌙"
	case MoodQuiet:
		return "🍃"
	default:
		return "😌"
	}
}
