package application

import "time"

// Clock lets services read the time without calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall-clock time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
