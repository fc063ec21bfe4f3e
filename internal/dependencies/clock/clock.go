package clock

import "time"

// Clock provides the current time; swapped for a fixed clock in tests
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Today formats the clock's current calendar day as YYYY-MM-DD
func Today(c Clock) string {
	return c.Now().Format("2006-01-02")
}
