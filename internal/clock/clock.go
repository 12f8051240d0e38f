// Package clock converts between a fixed local UTC offset and absolute
// instants.
//
// All user-facing date/time entry and display happens in one configurable
// fixed offset (+3:30 in the reference deployment); scheduling arithmetic
// happens on absolute instants.
package clock

import (
	"fmt"
	"log/slog"
	"time"
)

// Layout constants for user-facing date/time strings.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

// DefaultOffsetMinutes is the default local offset from UTC (+3:30).
const DefaultOffsetMinutes = 210

// Opts holds configuration options for the clock.
type Opts struct {
	// OffsetMinutes is the local offset from UTC in minutes.
	OffsetMinutes int
	// Now overrides the wall-clock source, for tests.
	Now func() time.Time
}

// Option defines a configuration option for the clock.
type Option func(*Opts)

// WithOffsetMinutes sets the local offset from UTC in minutes.
func WithOffsetMinutes(minutes int) Option {
	return func(o *Opts) { o.OffsetMinutes = minutes }
}

// WithNow overrides the wall-clock source.
func WithNow(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Clock is a stateless fixed-offset timezone adapter.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New creates a clock for the configured fixed offset.
func New(opts ...Option) *Clock {
	cfg := Opts{OffsetMinutes: DefaultOffsetMinutes, Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	name := fmt.Sprintf("UTC%+d:%02d", cfg.OffsetMinutes/60, abs(cfg.OffsetMinutes%60))
	slog.Debug("Creating clock", "offset_minutes", cfg.OffsetMinutes, "zone", name)
	return &Clock{
		loc: time.FixedZone(name, cfg.OffsetMinutes*60),
		now: cfg.Now,
	}
}

// Now returns the current absolute instant.
func (c *Clock) Now() time.Time {
	return c.now()
}

// LocalNow returns the current wall-clock time in the fixed offset.
func (c *Clock) LocalNow() time.Time {
	return c.now().In(c.loc)
}

// Location returns the fixed-offset location.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// ToAbsolute interprets a "YYYY-MM-DD" date and "HH:MM" time pair as local
// time in the fixed offset and returns the corresponding absolute instant.
func (c *Clock) ToAbsolute(dateStr, timeStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, dateStr+" "+timeStr, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse local date/time %q %q: %w", dateStr, timeStr, err)
	}
	return t, nil
}

// Format renders an instant as a local "YYYY-MM-DD HH:MM" string. It is the
// inverse of ToAbsolute for the same offset.
func (c *Clock) Format(t time.Time) string {
	return t.In(c.loc).Format(DateTimeLayout)
}

// DaysUntil compares calendar dates, ignoring time-of-day, between local now
// and a "YYYY-MM-DD" deadline. Malformed input yields "invalid date", never
// an error that aborts the caller.
func (c *Clock) DaysUntil(deadline string) string {
	d, err := time.ParseInLocation(DateLayout, deadline, c.loc)
	if err != nil {
		return "invalid date"
	}
	now := c.LocalNow()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	days := int(d.Sub(today).Hours() / 24)
	switch {
	case days < 0:
		return "overdue"
	case days == 0:
		return "today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
