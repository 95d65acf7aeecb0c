package generate

import (
	"fmt"
	"strings"

	"github.com/bodypress/bodypress/internal/journal"
)

// systemPrompt fixes the output schema. The decoder tolerates nothing
// outside this shape, so the instruction names every required key.
const systemPrompt = `You are the writing engine of Bodypress, a personal data journal styled like a small daily newspaper. You turn one day of sensor captures into a short, warm, factual journal entry written in second person.

Respond with ONLY a JSON object, no prose and no markdown, with exactly these keys:
  "headline": a short newspaper-style headline for the day
  "summary": one or two sentences summarising the day
  "full_body": the full journal entry, 2-4 short paragraphs
  "mood": one of energised, tired, active, cautious, rested, quiet, calm
  "mood_emoji": a single emoji matching the mood
  "tags": an array of 1-5 lowercase topic tags

Ground every statement in the data provided. Never invent events or numbers.`

// insightsPrompt fixes the per-capture metadata schema.
const insightsPrompt = `You annotate a single sensor capture from a personal data journal.

Respond with ONLY a JSON object, no prose and no markdown, with these keys:
  "summary": one sentence describing the moment
  "themes": array of short theme labels
  "mood_assessment": one phrase judging the mood conveyed
  "tags": array of lowercase topic tags
  "notable_signals": array of anything unusual in the data
  "energy_level": "high", "medium" or "low", or null
  "activity_category": one of sedentary, light, moderate, active, intense, or null
  "location_context": one of home, work, commute, outdoors, travel, social, unknown, or null
  "weather_impact": "positive", "neutral" or "negative", or null
  "social_context": "alone", "with-others" or "unknown", or null
  "sleep_quality": integer 1-10 or null
  "stress_level": integer 1-10 or null
  "environment_score": integer 1-10 or null
  "pattern_hints": array of short strings, may be empty

Use null for anything the data does not support.`

// buildPrompt renders the user message for one entry generation. The same
// request always produces the same prompt.
func buildPrompt(req Request, contextText string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "DATE: %s\n\n", req.Date)

	if len(req.Captures) > 0 {
		fmt.Fprintf(&b, "TODAY'S CAPTURES (%d):\n", len(req.Captures))
		for _, c := range req.Captures {
			b.WriteString("- ")
			b.WriteString(captureLine(c))
			b.WriteString("\n")
		}
	} else if req.Fallback != nil {
		b.WriteString("DAILY SUMMARY:\n")
		b.WriteString(snapshotLine(*req.Fallback))
		b.WriteString("\n")
	}

	if req.UserMood != "" {
		fmt.Fprintf(&b, "\nUSER MOOD: %s\n", req.UserMood)
	}
	if req.UserNote != "" {
		fmt.Fprintf(&b, "USER NOTE: %s\n", req.UserNote)
	}

	if contextText != "" {
		b.WriteString("\nRECENT DAYS:\n")
		b.WriteString(contextText)
	}

	b.WriteString("\nWrite today's journal entry as JSON.")
	return b.String()
}

// captureLine renders one capture compactly, skipping fields that were not
// collected.
func captureLine(c journal.Capture) string {
	parts := []string{c.Timestamp.Format("15:04"), "[" + string(c.Source) + "]"}

	if h := c.Health; h != nil {
		if h.Steps > 0 {
			parts = append(parts, fmt.Sprintf("steps=%d", h.Steps))
		}
		if h.DistanceKm > 0 {
			parts = append(parts, fmt.Sprintf("distance=%.1fkm", h.DistanceKm))
		}
		if h.ActiveCalories > 0 {
			parts = append(parts, fmt.Sprintf("calories=%d", h.ActiveCalories))
		}
		if h.HeartRate > 0 {
			parts = append(parts, fmt.Sprintf("hr=%d", h.HeartRate))
		}
		if h.SleepHours > 0 {
			parts = append(parts, fmt.Sprintf("sleep=%.1fh", h.SleepHours))
		}
		if h.Workouts > 0 {
			parts = append(parts, fmt.Sprintf("workouts=%d", h.Workouts))
		}
	}
	if e := c.Environment; e != nil {
		if e.TempC != nil {
			parts = append(parts, fmt.Sprintf("temp=%.1fC", *e.TempC))
		}
		if e.WeatherDesc != nil && *e.WeatherDesc != "" {
			parts = append(parts, "weather="+*e.WeatherDesc)
		}
		if e.AQI != nil {
			parts = append(parts, fmt.Sprintf("aqi=%d", *e.AQI))
		}
		if e.UVIndex != nil {
			parts = append(parts, fmt.Sprintf("uv=%d", *e.UVIndex))
		}
	}
	if l := c.Location; l != nil && l.City != "" {
		parts = append(parts, "city="+l.City)
	}
	if len(c.CalendarTitles) > 0 {
		parts = append(parts, "calendar="+strings.Join(c.CalendarTitles, "; "))
	}
	if c.Mood != "" {
		parts = append(parts, "mood="+c.Mood)
	}
	if c.Note != "" {
		parts = append(parts, fmt.Sprintf("note=%q", c.Note))
	}
	return strings.Join(parts, " ")
}

// snapshotLine renders a fallback daily aggregate the same way.
func snapshotLine(s journal.DailySnapshot) string {
	var parts []string
	if s.Steps > 0 {
		parts = append(parts, fmt.Sprintf("steps=%d", s.Steps))
	}
	if s.DistanceKm > 0 {
		parts = append(parts, fmt.Sprintf("distance=%.1fkm", s.DistanceKm))
	}
	if s.ActiveCalories > 0 {
		parts = append(parts, fmt.Sprintf("calories=%d", s.ActiveCalories))
	}
	if s.AvgHeartRate > 0 {
		parts = append(parts, fmt.Sprintf("avg_hr=%d", s.AvgHeartRate))
	}
	if s.SleepHours > 0 {
		parts = append(parts, fmt.Sprintf("sleep=%.1fh", s.SleepHours))
	}
	if s.Workouts > 0 {
		parts = append(parts, fmt.Sprintf("workouts=%d", s.Workouts))
	}
	if s.TempC != nil {
		parts = append(parts, fmt.Sprintf("temp=%.1fC", *s.TempC))
	}
	if s.WeatherDesc != nil && *s.WeatherDesc != "" {
		parts = append(parts, "weather="+*s.WeatherDesc)
	}
	if s.City != nil && *s.City != "" {
		parts = append(parts, "city="+*s.City)
	}
	if s.AQI != nil {
		parts = append(parts, fmt.Sprintf("aqi=%d", *s.AQI))
	}
	if s.UVIndex != nil {
		parts = append(parts, fmt.Sprintf("uv=%d", *s.UVIndex))
	}
	if len(s.CalendarTitles) > 0 {
		parts = append(parts, "calendar="+strings.Join(s.CalendarTitles, "; "))
	}
	if len(parts) == 0 {
		return "(no data)"
	}
	return strings.Join(parts, " ")
}

// buildInsightsPrompt renders the user message for per-capture metadata.
func buildInsightsPrompt(c journal.Capture) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CAPTURE AT %s (%s):\n", c.Timestamp.Format("2006-01-02 15:04"), c.Timestamp.Weekday())
	b.WriteString(captureLine(c))
	b.WriteString("\n\nAnnotate this capture as JSON.")
	return b.String()
}
