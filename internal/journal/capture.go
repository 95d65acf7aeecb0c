package journal

import (
	"context"
	"time"
)

// Sensor collaborators. Each is optional; a nil provider simply leaves its
// block empty, and a failing one records its error on the capture instead
// of aborting it.

// HealthProvider reads activity and body metrics.
type HealthProvider interface {
	Health(ctx context.Context) (*Health, error)
}

// EnvironmentProvider reads outdoor conditions.
type EnvironmentProvider interface {
	Environment(ctx context.Context) (*Environment, error)
}

// LocationProvider reads the current position.
type LocationProvider interface {
	Location(ctx context.Context) (*Location, error)
}

// CalendarProvider reads today's event titles.
type CalendarProvider interface {
	CalendarTitles(ctx context.Context) ([]string, error)
}

// BatteryProvider reads the device battery percentage.
type BatteryProvider interface {
	Battery(ctx context.Context) (*int, error)
}

// Providers bundles the sensor collaborators for a capture run.
type Providers struct {
	Health      HealthProvider
	Environment EnvironmentProvider
	Location    LocationProvider
	Calendar    CalendarProvider
	Battery     BatteryProvider
}

// CaptureOptions carries the user-supplied parts of a capture.
type CaptureOptions struct {
	Note    string
	Mood    string
	Tags    []string
	Source  CaptureSource
	Trigger CaptureTrigger
}

// TakeCapture polls every configured provider and assembles an immutable
// capture record. Provider failures never abort the capture; they land in
// the record's error list so a partially-sensed moment is still journaled.
func TakeCapture(ctx context.Context, p Providers, opts CaptureOptions) Capture {
	start := time.Now()

	c := Capture{
		ID:             NewCaptureID(),
		Timestamp:      start,
		Note:           opts.Note,
		Mood:           opts.Mood,
		Tags:           opts.Tags,
		CalendarTitles: []string{},
		Source:         opts.Source,
		Trigger:        opts.Trigger,
		Errors:         []string{},
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Source == "" {
		c.Source = SourceManual
	}
	if c.Trigger == "" {
		c.Trigger = TriggerNone
	}

	if p.Health != nil {
		if h, err := p.Health.Health(ctx); err != nil {
			c.Errors = append(c.Errors, "health: "+err.Error())
		} else {
			c.Health = h
		}
	}
	if p.Environment != nil {
		if e, err := p.Environment.Environment(ctx); err != nil {
			c.Errors = append(c.Errors, "environment: "+err.Error())
		} else {
			c.Environment = e
		}
	}
	if p.Location != nil {
		if l, err := p.Location.Location(ctx); err != nil {
			c.Errors = append(c.Errors, "location: "+err.Error())
		} else {
			c.Location = l
		}
	}
	if p.Calendar != nil {
		if titles, err := p.Calendar.CalendarTitles(ctx); err != nil {
			c.Errors = append(c.Errors, "calendar: "+err.Error())
		} else if titles != nil {
			c.CalendarTitles = titles
		}
	}
	if p.Battery != nil {
		if b, err := p.Battery.Battery(ctx); err != nil {
			c.Errors = append(c.Errors, "battery: "+err.Error())
		} else {
			c.Battery = b
		}
	}

	c.DurationMs = int(time.Since(start).Milliseconds())
	return c
}
