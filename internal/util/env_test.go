package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"off", true, false},
		{"0", true, false},
		{"", true, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		t.Setenv("TEST_BOOL", tc.value)
		if got := ParseBoolEnv("TEST_BOOL", tc.def); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v): expected %v, got %v", tc.value, tc.def, tc.want, got)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("TEST_INT", "210")
	if got := ParseIntEnv("TEST_INT", 0); got != 210 {
		t.Errorf("Expected 210, got %d", got)
	}

	t.Setenv("TEST_INT", "-300")
	if got := ParseIntEnv("TEST_INT", 0); got != -300 {
		t.Errorf("Expected -300, got %d", got)
	}

	t.Setenv("TEST_INT", "not-a-number")
	if got := ParseIntEnv("TEST_INT", 42); got != 42 {
		t.Errorf("Expected default 42, got %d", got)
	}

	t.Setenv("TEST_INT", "")
	if got := ParseIntEnv("TEST_INT", 7); got != 7 {
		t.Errorf("Expected default 7, got %d", got)
	}
}
