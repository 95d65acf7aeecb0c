package generate

import (
	"strings"
	"testing"
	"time"

	"github.com/bodypress/bodypress/internal/journal"
)

func TestCaptureLine(t *testing.T) {
	temp := 21.5
	c := journal.Capture{
		Timestamp: time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC),
		Source:    journal.SourceManual,
		Health:    &journal.Health{Steps: 5000, HeartRate: 72},
		Environment: &journal.Environment{
			TempC: &temp,
		},
		Note: "lunch walk",
	}

	line := captureLine(c)
	for _, check := range []string{"12:30", "[manual]", "steps=5000", "hr=72", "temp=21.5C", `note="lunch walk"`} {
		if !strings.Contains(line, check) {
			t.Errorf("missing %q in %q", check, line)
		}
	}
	// Unmeasured fields stay out.
	if strings.Contains(line, "sleep=") || strings.Contains(line, "distance=") {
		t.Errorf("zero fields should be skipped: %q", line)
	}
}

func TestSnapshotLine_Empty(t *testing.T) {
	if got := snapshotLine(journal.DailySnapshot{}); got != "(no data)" {
		t.Errorf("got %q", got)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	req := testRequest()
	if buildPrompt(req, "ctx") != buildPrompt(req, "ctx") {
		t.Error("prompt construction must be deterministic")
	}
}

func TestBuildPrompt_FallbackSummary(t *testing.T) {
	req := Request{
		Date:     "2025-06-15",
		Fallback: &journal.DailySnapshot{Steps: 5000},
	}
	prompt := buildPrompt(req, "")
	if !strings.Contains(prompt, "DAILY SUMMARY:") {
		t.Error("fallback requests should render the daily summary block")
	}
	if strings.Contains(prompt, "TODAY'S CAPTURES") {
		t.Error("no capture block without captures")
	}
}
