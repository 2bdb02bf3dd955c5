package loader

import (
	"math"
	"time"
)

// FreshnessHorizonDays is the age at which a document's freshness reaches zero.
const FreshnessHorizonDays = 365

// Freshness decays linearly from 1 for a document published today to 0 for
// one FreshnessHorizonDays or more old. Age is counted in whole elapsed days
// of wall-clock time, so daylight saving shifts do not change it. Future
// dates score 1.
func Freshness(published, now time.Time) float64 {
	daysOld := math.Floor(wallClock(now).Sub(wallClock(published)).Hours() / 24)
	score := 1 - daysOld/FreshnessHorizonDays
	return math.Max(0, math.Min(1, score))
}

// wallClock keeps the date and clock reading of t and drops its zone offset.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
