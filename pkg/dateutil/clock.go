package dateutil

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Tests move it by assigning T.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.T
}

func BeginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func NextDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1)
}

// NextDayAt returns the first instant after t whose hour in t's location is
// hour.
func NextDayAt(t time.Time, hour int) time.Time {
	next := BeginningOfDay(t).Add(time.Duration(hour) * time.Hour)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// LoadLocation resolves name, falling back to UTC when name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	return time.LoadLocation(name)
}
