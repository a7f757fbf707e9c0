package calendar

import "time"

// Clock reads the current instant in a fixed location. "Today" for date
// bounds is always taken from a Clock so the practice's time zone decides
// where the day ends.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a wall clock in loc. A nil loc means UTC.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: time.Now}
}

// FixedClock always reports t, in t's location.
func FixedClock(t time.Time) Clock {
	return Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Now returns the current instant in the clock's location.
func (c Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current date in the clock's location.
func (c Clock) Today() Date {
	return DateOf(c.Now())
}

// DateOf returns the date of t seen from the clock's location.
func (c Clock) DateOf(t time.Time) Date {
	return DateOf(t.In(c.loc))
}
