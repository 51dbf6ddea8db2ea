package meter

import (
	"fmt"
	"time"
)

// TimeUnit is a resolution for time meters.
type TimeUnit string

const (
	Nanoseconds  TimeUnit = "ns"
	Microseconds TimeUnit = "us"
	Milliseconds TimeUnit = "ms"
	Seconds      TimeUnit = "s"
)

var timeUnits = map[TimeUnit]struct {
	size        time.Duration
	description string
}{
	Nanoseconds:  {time.Nanosecond, "nanoseconds"},
	Microseconds: {time.Microsecond, "microseconds"},
	Milliseconds: {time.Millisecond, "milliseconds"},
	Seconds:      {time.Second, "seconds"},
}

// ParseTimeUnit returns the TimeUnit named by s.
func ParseTimeUnit(s string) (TimeUnit, error) {
	u := TimeUnit(s)
	if _, ok := timeUnits[u]; !ok {
		return "", fmt.Errorf("unknown time unit: %q", s)
	}
	return u, nil
}

// Duration converts a value expressed in u to a time.Duration.
func (u TimeUnit) Duration(v float64) time.Duration {
	return time.Duration(v * float64(timeUnits[u].size))
}

// Time measures elapsed wall-clock time using Go's monotonic clock.
type Time struct {
	name   string
	unit   TimeUnit
	origin time.Time
}

// NewTime creates a time meter reporting in unit. An unknown unit falls back
// to milliseconds.
func NewTime(unit TimeUnit) *Time {
	return NewNamedTime("time", unit)
}

// NewNamedTime creates a time meter with a custom name.
func NewNamedTime(name string, unit TimeUnit) *Time {
	if _, ok := timeUnits[unit]; !ok {
		unit = Milliseconds
	}
	return &Time{name: name, unit: unit, origin: time.Now()}
}

func (t *Time) Name() string        { return t.name }
func (t *Time) Unit() string        { return string(t.unit) }
func (t *Time) Description() string { return timeUnits[t.unit].description }
func (t *Time) Kind() Kind          { return KindTime }

// Value returns the time elapsed since the meter was created, in its unit.
func (t *Time) Value() float64 {
	return float64(time.Since(t.origin)) / float64(timeUnits[t.unit].size)
}

// TimeUnit returns the unit the meter reports in.
func (t *Time) TimeUnit() TimeUnit {
	return t.unit
}
