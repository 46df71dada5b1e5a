package analysis

import (
	"fmt"
	"time"
)

// Remaining returns whole seconds left until expiresAt, never negative.
func Remaining(expiresAt, now time.Time) int64 {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// FormatCountdown renders seconds as MM:SS. Minutes are not wrapped at 60.
func FormatCountdown(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
