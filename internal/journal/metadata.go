package journal

import (
	"fmt"
	"time"
)

// Closed vocabularies for AI-derived capture metadata. Every enum field on
// CaptureMetadata is either nil or a member of its set; Normalize enforces
// this before anything is persisted or aggregated across days.

// EnergyLevel grades the energy conveyed by a capture.
type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "high"
	EnergyMedium EnergyLevel = "medium"
	EnergyLow    EnergyLevel = "low"
)

// TimeOfDay buckets a capture's clock time.
type TimeOfDay string

const (
	TimeEarlyMorning TimeOfDay = "early-morning"
	TimeMorning      TimeOfDay = "morning"
	TimeMidday       TimeOfDay = "midday"
	TimeAfternoon    TimeOfDay = "afternoon"
	TimeEvening      TimeOfDay = "evening"
	TimeNight        TimeOfDay = "night"
	TimeLateNight    TimeOfDay = "late-night"
)

// DayType separates working days from weekends.
type DayType string

const (
	DayWeekday DayType = "weekday"
	DayWeekend DayType = "weekend"
)

// ActivityCategory grades the movement level around a capture.
type ActivityCategory string

const (
	ActivitySedentary ActivityCategory = "sedentary"
	ActivityLight     ActivityCategory = "light"
	ActivityModerate  ActivityCategory = "moderate"
	ActivityActive    ActivityCategory = "active"
	ActivityIntense   ActivityCategory = "intense"
)

// LocationContext classifies where a capture happened.
type LocationContext string

const (
	LocationHome     LocationContext = "home"
	LocationWork     LocationContext = "work"
	LocationCommute  LocationContext = "commute"
	LocationOutdoors LocationContext = "outdoors"
	LocationTravel   LocationContext = "travel"
	LocationSocial   LocationContext = "social"
	LocationUnknown  LocationContext = "unknown"
)

// WeatherImpact judges how conditions affected the capture.
type WeatherImpact string

const (
	WeatherPositive WeatherImpact = "positive"
	WeatherNeutral  WeatherImpact = "neutral"
	WeatherNegative WeatherImpact = "negative"
)

// SocialContext classifies company during a capture.
type SocialContext string

const (
	SocialAlone      SocialContext = "alone"
	SocialWithOthers SocialContext = "with-others"
	SocialUnknown    SocialContext = "unknown"
)

func validEnergyLevel(v EnergyLevel) bool {
	switch v {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return true
	}
	return false
}

func validTimeOfDay(v TimeOfDay) bool {
	switch v {
	case TimeEarlyMorning, TimeMorning, TimeMidday, TimeAfternoon, TimeEvening, TimeNight, TimeLateNight:
		return true
	}
	return false
}

func validDayType(v DayType) bool {
	return v == DayWeekday || v == DayWeekend
}

func validActivityCategory(v ActivityCategory) bool {
	switch v {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityIntense:
		return true
	}
	return false
}

func validLocationContext(v LocationContext) bool {
	switch v {
	case LocationHome, LocationWork, LocationCommute, LocationOutdoors, LocationTravel, LocationSocial, LocationUnknown:
		return true
	}
	return false
}

func validWeatherImpact(v WeatherImpact) bool {
	switch v {
	case WeatherPositive, WeatherNeutral, WeatherNegative:
		return true
	}
	return false
}

func validSocialContext(v SocialContext) bool {
	switch v {
	case SocialAlone, SocialWithOthers, SocialUnknown:
		return true
	}
	return false
}

// CaptureMetadata is the AI-derived annotation attached to a processed
// capture. It is a cache: always re-derivable from the raw capture fields
// and never authoritative over them.
type CaptureMetadata struct {
	Summary        string   `json:"summary"`
	Themes         []string `json:"themes"`
	MoodAssessment string   `json:"mood_assessment"`
	Tags           []string `json:"tags"`
	NotableSignals []string `json:"notable_signals"`

	EnergyLevel      *EnergyLevel      `json:"energy_level,omitempty"`
	TimeOfDay        *TimeOfDay        `json:"time_of_day,omitempty"`
	DayType          *DayType          `json:"day_type,omitempty"`
	ActivityCategory *ActivityCategory `json:"activity_category,omitempty"`
	LocationContext  *LocationContext  `json:"location_context,omitempty"`
	WeatherImpact    *WeatherImpact    `json:"weather_impact,omitempty"`
	SocialContext    *SocialContext    `json:"social_context,omitempty"`

	SleepQuality     *int `json:"sleep_quality,omitempty"`
	StressLevel      *int `json:"stress_level,omitempty"`
	EnvironmentScore *int `json:"environment_score,omitempty"`

	PatternHints []string  `json:"pattern_hints,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Normalize coerces the metadata into contract shape: enum fields outside
// their vocabulary become nil, scores outside [1,10] become nil, and list
// fields become non-nil. Total: it never fails, whatever the input.
func (m *CaptureMetadata) Normalize() {
	if m.Themes == nil {
		m.Themes = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.NotableSignals == nil {
		m.NotableSignals = []string{}
	}
	if m.EnergyLevel != nil && !validEnergyLevel(*m.EnergyLevel) {
		m.EnergyLevel = nil
	}
	if m.TimeOfDay != nil && !validTimeOfDay(*m.TimeOfDay) {
		m.TimeOfDay = nil
	}
	if m.DayType != nil && !validDayType(*m.DayType) {
		m.DayType = nil
	}
	if m.ActivityCategory != nil && !validActivityCategory(*m.ActivityCategory) {
		m.ActivityCategory = nil
	}
	if m.LocationContext != nil && !validLocationContext(*m.LocationContext) {
		m.LocationContext = nil
	}
	if m.WeatherImpact != nil && !validWeatherImpact(*m.WeatherImpact) {
		m.WeatherImpact = nil
	}
	if m.SocialContext != nil && !validSocialContext(*m.SocialContext) {
		m.SocialContext = nil
	}
	m.SleepQuality = scoreOrNil(m.SleepQuality)
	m.StressLevel = scoreOrNil(m.StressLevel)
	m.EnvironmentScore = scoreOrNil(m.EnvironmentScore)
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = time.Now().UTC()
	}
}

// Validate reports the first contract violation, or nil if the metadata is
// already in contract shape. Normalize always produces a valid value.
func (m *CaptureMetadata) Validate() error {
	if m.Themes == nil || m.Tags == nil || m.NotableSignals == nil {
		return fmt.Errorf("metadata: list fields must be non-nil")
	}
	if m.EnergyLevel != nil && !validEnergyLevel(*m.EnergyLevel) {
		return fmt.Errorf("metadata: invalid energy_level %q", *m.EnergyLevel)
	}
	if m.TimeOfDay != nil && !validTimeOfDay(*m.TimeOfDay) {
		return fmt.Errorf("metadata: invalid time_of_day %q", *m.TimeOfDay)
	}
	if m.DayType != nil && !validDayType(*m.DayType) {
		return fmt.Errorf("metadata: invalid day_type %q", *m.DayType)
	}
	if m.ActivityCategory != nil && !validActivityCategory(*m.ActivityCategory) {
		return fmt.Errorf("metadata: invalid activity_category %q", *m.ActivityCategory)
	}
	if m.LocationContext != nil && !validLocationContext(*m.LocationContext) {
		return fmt.Errorf("metadata: invalid location_context %q", *m.LocationContext)
	}
	if m.WeatherImpact != nil && !validWeatherImpact(*m.WeatherImpact) {
		return fmt.Errorf("metadata: invalid weather_impact %q", *m.WeatherImpact)
	}
	if m.SocialContext != nil && !validSocialContext(*m.SocialContext) {
		return fmt.Errorf("metadata: invalid social_context %q", *m.SocialContext)
	}
	for name, s := range map[string]*int{
		"sleep_quality":     m.SleepQuality,
		"stress_level":      m.StressLevel,
		"environment_score": m.EnvironmentScore,
	} {
		if s != nil && (*s < 1 || *s > 10) {
			return fmt.Errorf("metadata: %s %d outside [1,10]", name, *s)
		}
	}
	return nil
}

func scoreOrNil(s *int) *int {
	if s == nil || *s < 1 || *s > 10 {
		return nil
	}
	return s
}

// TimeOfDayFor buckets a clock time into the TimeOfDay vocabulary.
func TimeOfDayFor(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h < 5:
		return TimeLateNight
	case h < 8:
		return TimeEarlyMorning
	case h < 11:
		return TimeMorning
	case h < 14:
		return TimeMidday
	case h < 17:
		return TimeAfternoon
	case h < 21:
		return TimeEvening
	default:
		return TimeNight
	}
}

// DayTypeFor classifies a date as weekday or weekend.
func DayTypeFor(t time.Time) DayType {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return DayWeekend
	}
	return DayWeekday
}
