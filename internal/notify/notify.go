// Package notify sends desktop notifications for daemon events.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

const appName = "Bodypress"

// CaptureStored announces a stored background capture.
func CaptureStored(sensorErrors int) error {
	msg := "Moment captured"
	if sensorErrors > 0 {
		msg = fmt.Sprintf("Moment captured (%d sensor(s) unavailable)", sensorErrors)
	}
	return beeep.Notify(appName, msg, "")
}

// EntryReady announces a freshly written journal entry.
func EntryReady(date, headline string) error {
	return beeep.Notify(appName, fmt.Sprintf("Journal for %s: %s", date, headline), "")
}

// Problem raises an alert for a condition that needs the user's attention.
func Problem(message string) error {
	return beeep.Alert(appName, message, "")
}
