package progression

import "time"

// Clock supplies "today" to the engine. It is injected rather than read
// from the system so period and streak decisions are deterministic in tests.
type Clock interface {
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Today() time.Time {
	return DateOf(time.Now())
}

// SystemClock returns a Clock backed by the wall clock, truncated to a
// calendar date in UTC.
func SystemClock() Clock {
	return systemClock{}
}

// DateOf strips the time-of-day and location from t, leaving a bare
// calendar date at midnight UTC. All engine functions normalize their
// inputs through this, so callers may pass full timestamps.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
