package core

import "testing"

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string // ISO, "" for unparseable
	}{
		{"2024-01-31", "2024-01-31"},
		{"2024-01-31T00:00:00.000Z", "2024-01-31"},
		{"2024-01-31 14:22:01", "2024-01-31"},
		{"31/01/2024", "2024-01-31"},
		{"2024-01-31T10:00:00Z", "2024-01-31"},
		{"", ""},
		{"not a date", ""},
		{"31-01-2024", ""},
	}
	for _, tc := range cases {
		got := ParseDate(tc.in)
		if got.ISO() != tc.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tc.in, got.ISO(), tc.want)
		}
	}
}

func TestMonthKey(t *testing.T) {
	if got := NewDate(2024, 1, 15).MonthKey(); got != "2024-01" {
		t.Fatalf("MonthKey = %q, want 2024-01", got)
	}
	if got := (Date{}).MonthKey(); got != "" {
		t.Fatalf("zero date MonthKey = %q, want empty", got)
	}
}

func TestAddMonthsClamping(t *testing.T) {
	cases := []struct {
		start  Date
		months int
		want   string
	}{
		{NewDate(2023, 1, 31), 1, "2023-02-28"}, // non-leap
		{NewDate(2024, 1, 31), 1, "2024-02-29"}, // leap
		{NewDate(2024, 1, 31), 2, "2024-03-31"},
		{NewDate(2024, 1, 15), 1, "2024-02-15"},
		{NewDate(2024, 11, 30), 2, "2025-01-30"}, // year rollover
		{NewDate(2024, 10, 31), 1, "2024-11-30"},
	}
	for _, tc := range cases {
		got := tc.start.AddMonths(tc.months)
		if got.ISO() != tc.want {
			t.Errorf("%s + %d months = %s, want %s", tc.start.ISO(), tc.months, got.ISO(), tc.want)
		}
	}
}

func TestValidMonthKey(t *testing.T) {
	for _, good := range []string{"2024-01", "1999-12"} {
		if !ValidMonthKey(good) {
			t.Errorf("ValidMonthKey(%q) = false, want true", good)
		}
	}
	for _, bad := range []string{"", "2024", "2024-13", "2024/01", "2024-1"} {
		if ValidMonthKey(bad) {
			t.Errorf("ValidMonthKey(%q) = true, want false", bad)
		}
	}
}
