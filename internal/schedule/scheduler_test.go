package schedule

import (
	"testing"
	"time"

	"github.com/bodypress/bodypress/internal/config"
)

// mkTime builds a fixed date at h:m UTC. The date is a Wednesday.
func mkTime(h, m int) time.Time {
	return time.Date(2026, 3, 4, h, m, 0, 0, time.UTC)
}

func TestNextCapture(t *testing.T) {
	cfg := config.CaptureConfig{
		IntervalMinutes: 120,
		DayStartHour:    7,
		DayEndHour:      22,
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid window advances one interval",
			now:  mkTime(10, 0),
			want: mkTime(12, 0),
		},
		{
			name: "tick past window end rolls to next morning",
			now:  mkTime(21, 30),
			want: mkTime(7, 0).Add(24 * time.Hour),
		},
		{
			// 20:00 + 2h lands exactly on 22:00, outside the half-open window.
			name: "tick exactly at window end rolls to next morning",
			now:  mkTime(20, 0),
			want: mkTime(7, 0).Add(24 * time.Hour),
		},
		{
			name: "early morning clamps to window start",
			now:  mkTime(4, 0),
			want: mkTime(7, 0),
		},
		{
			name: "late night rolls to next morning",
			now:  mkTime(23, 30),
			want: mkTime(7, 0).Add(24 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextCapture(tt.now, cfg)
			if !got.Equal(tt.want) {
				t.Errorf("NextCapture(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextCapture_Defaults(t *testing.T) {
	// Zero interval and an inverted window fall back to 120m inside 7..22.
	got := NextCapture(mkTime(10, 0), config.CaptureConfig{DayStartHour: 20, DayEndHour: 5})
	want := mkTime(12, 0)
	if !got.Equal(want) {
		t.Errorf("NextCapture with defaults = %s, want %s", got, want)
	}
}

func TestNextCapture_AlwaysFuture(t *testing.T) {
	cfg := config.CaptureConfig{IntervalMinutes: 30, DayStartHour: 8, DayEndHour: 21}
	for h := 0; h < 24; h++ {
		now := mkTime(h, 15)
		got := NextCapture(now, cfg)
		if !got.After(now) {
			t.Errorf("NextCapture(%s) = %s is not in the future", now, got)
		}
		if got.Hour() < 8 || got.Hour() >= 21 {
			t.Errorf("NextCapture(%s) = %s lands outside the day window", now, got)
		}
	}
}

func TestNextGeneration(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			name: "before the hour fires today",
			now:  mkTime(3, 0),
			hour: 6,
			want: mkTime(6, 0),
		},
		{
			name: "exactly at the hour fires tomorrow",
			now:  mkTime(6, 0),
			hour: 6,
			want: mkTime(6, 0).Add(24 * time.Hour),
		},
		{
			name: "after the hour fires tomorrow",
			now:  mkTime(10, 0),
			hour: 6,
			want: mkTime(6, 0).Add(24 * time.Hour),
		},
		{
			name: "invalid hour falls back to 6",
			now:  mkTime(3, 0),
			hour: 99,
			want: mkTime(6, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextGeneration(tt.now, tt.hour)
			if !got.Equal(tt.want) {
				t.Errorf("NextGeneration(%s, %d) = %s, want %s", tt.now, tt.hour, got, tt.want)
			}
		})
	}
}
