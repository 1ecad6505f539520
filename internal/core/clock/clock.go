// Package clock provides the injectable time source and the calendar-day
// arithmetic used by attendance, leave and payroll.
package clock

import (
	"sync"
	"time"
)

// Func is a time source; services take one so tests can pin "now".
type Func func() time.Time

func (f Func) Now() time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

// Day returns the calendar day t falls on in loc, as midnight UTC. Days are
// stored this way so equality on the date column is timezone independent.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns [first day of month, first day of next month).
func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DaysInclusive counts calendar days from start to end, both included.
func DaysInclusive(start, end time.Time) int {
	s := Day(start, nil)
	e := Day(end, nil)
	return int(e.Sub(s).Hours()/24) + 1
}

// Fixed is a controllable clock for tests.
type Fixed struct {
	mu      sync.Mutex
	current time.Time
}

func NewFixed(start time.Time) *Fixed {
	return &Fixed{current: start}
}

func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Fixed) Func() Func {
	return c.Now
}

func (c *Fixed) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

func (c *Fixed) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
