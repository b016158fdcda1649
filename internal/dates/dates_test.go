package dates

import (
	"testing"
	"time"
)

// fixedNow is a Saturday evening; late enough that a naive UTC conversion
// of a western-hemisphere zone would land on the wrong day.
var fixedNow = time.Date(2025, 12, 20, 23, 30, 0, 0, time.UTC)

func dublin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Dublin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestNormalize_RelativeTerms(t *testing.T) {
	loc := dublin(t)

	if got := Normalize("today", fixedNow, loc); got != "2025-12-20" {
		t.Fatalf("today: got %q", got)
	}
	if got := Normalize("tomorrow", fixedNow, loc); got != "2025-12-21" {
		t.Fatalf("tomorrow: got %q", got)
	}
	// Relative terms match as substrings, mirroring how people actually type.
	if got := Normalize("can I come in tomorrow?", fixedNow, loc); got != "2025-12-21" {
		t.Fatalf("embedded tomorrow: got %q", got)
	}
	if got := Normalize("TODAY please", fixedNow, loc); got != "2025-12-20" {
		t.Fatalf("case-insensitive today: got %q", got)
	}
}

func TestNormalize_RespectsLocation(t *testing.T) {
	// 23:30 UTC is already the next day in Auckland.
	akl, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if got := Normalize("today", fixedNow, akl); got != "2025-12-21" {
		t.Fatalf("today in Auckland: got %q", got)
	}
}

func TestNormalize_PassThrough(t *testing.T) {
	loc := dublin(t)
	if got := Normalize("  2025-12-22  ", fixedNow, loc); got != "2025-12-22" {
		t.Fatalf("trimmed pass-through: got %q", got)
	}
	if got := Normalize("whenever", fixedNow, loc); got != "whenever" {
		t.Fatalf("non-date pass-through: got %q", got)
	}
}

func TestExtract(t *testing.T) {
	loc := dublin(t)

	cases := []struct {
		in   string
		want string
	}{
		{"book me in tomorrow", "2025-12-21"},
		{"I want an appointment today", "2025-12-20"},
		{"anything on 2025-12-22?", "2025-12-22"},
		{"I need to see a doctor", ""},
		{"call me on 087-1234567", ""}, // digits alone are not a date
	}
	for _, tc := range cases {
		if got := Extract(tc.in, fixedNow, loc); got != tc.want {
			t.Fatalf("Extract(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestValid(t *testing.T) {
	valid := []string{"2025-12-20", "2024-02-29"}
	for _, d := range valid {
		if !Valid(d) {
			t.Fatalf("expected %q valid", d)
		}
	}
	invalid := []string{"2025-13-01", "2025-02-30", "20-12-2025", "tomorrow", ""}
	for _, d := range invalid {
		if Valid(d) {
			t.Fatalf("expected %q invalid", d)
		}
	}
}
