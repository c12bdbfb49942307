package tracker

import (
	"fmt"
	"time"

	"github.com/benjamonnguyen/questlog-go"
)

// ActiveElapsed returns the time since start excluding closed pauses and any open pause.
// The result is negative when the clock moved backwards.
func ActiveElapsed(r questlog.TimerRecord, now time.Time) time.Duration {
	if r.StartTime.IsZero() {
		return 0
	}
	d := now.Sub(r.StartTime)
	for _, p := range r.PauseHistory {
		d -= p.Duration()
	}
	if !r.LastPauseStart.IsZero() {
		d -= now.Sub(r.LastPauseStart)
	}
	return d
}

// WholeSeconds floors d to whole seconds, never below zero.
func WholeSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// FormatElapsed renders seconds as HH:MM:SS.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
