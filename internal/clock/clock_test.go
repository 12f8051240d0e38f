package clock

import (
	"testing"
	"time"
)

func fixedClock(t *testing.T, utc time.Time) *Clock {
	t.Helper()
	return New(WithOffsetMinutes(DefaultOffsetMinutes), WithNow(func() time.Time { return utc }))
}

func TestToAbsolute(t *testing.T) {
	c := New(WithOffsetMinutes(210))
	got, err := c.ToAbsolute("2025-10-20", "14:30")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// 14:30 at +3:30 is 11:00 UTC
	want := time.Date(2025, 10, 20, 11, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestToAbsoluteMalformed(t *testing.T) {
	c := New()
	if _, err := c.ToAbsolute("2025-13-40", "99:99"); err == nil {
		t.Error("Expected error for malformed date/time, got nil")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	c := New(WithOffsetMinutes(210))
	abs, err := c.ToAbsolute("2025-10-20", "14:30")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := c.Format(abs); got != "2025-10-20 14:30" {
		t.Errorf("Expected round-trip to reproduce \"2025-10-20 14:30\", got %q", got)
	}
}

func TestLocalNow(t *testing.T) {
	c := fixedClock(t, time.Date(2025, 10, 20, 21, 0, 0, 0, time.UTC))
	local := c.LocalNow()
	// 21:00 UTC at +3:30 is 00:30 the next day
	if local.Hour() != 0 || local.Minute() != 30 || local.Day() != 21 {
		t.Errorf("Expected local 2025-10-21 00:30, got %v", local)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC) // local 13:30
	c := fixedClock(t, now)

	cases := []struct {
		deadline string
		want     string
	}{
		{"2025-10-25", "5 days left"},
		{"2025-10-21", "1 day left"},
		{"2025-10-20", "today"},
		{"2025-10-19", "overdue"},
		{"2099-01-01", "26736 days left"},
		{"not-a-date", "invalid date"},
		{"", "invalid date"},
	}
	for _, tc := range cases {
		if got := c.DaysUntil(tc.deadline); got != tc.want {
			t.Errorf("DaysUntil(%q): expected %q, got %q", tc.deadline, tc.want, got)
		}
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	// 20:25 UTC is local 23:55, still 2025-10-20 locally
	c := fixedClock(t, time.Date(2025, 10, 20, 20, 25, 0, 0, time.UTC))
	if got := c.DaysUntil("2025-10-21"); got != "1 day left" {
		t.Errorf("Expected \"1 day left\" just before local midnight, got %q", got)
	}
}

func TestNegativeOffset(t *testing.T) {
	c := New(WithOffsetMinutes(-300), WithNow(func() time.Time {
		return time.Date(2025, 10, 20, 2, 0, 0, 0, time.UTC)
	}))
	local := c.LocalNow()
	// 02:00 UTC at -5:00 is 21:00 the previous day
	if local.Hour() != 21 || local.Day() != 19 {
		t.Errorf("Expected local 2025-10-19 21:00, got %v", local)
	}
}
