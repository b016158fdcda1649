// Package dates normalizes user-supplied date text for the booking dialogue.
// Users may answer with a literal ISO date ("2025-12-20") or the relative
// terms "today"/"tomorrow", which are resolved against a fixed reference time
// zone so the answer does not depend on where the server happens to run.
package dates

import (
	"regexp"
	"strings"
	"time"
)

// ISOFormat is the calendar-date layout used throughout the data model.
const ISOFormat = "2006-01-02"

var isoRE = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// Normalize resolves msg to an ISO date candidate. "today" and "tomorrow"
// (matched as case-insensitive substrings, like the rest of the dialogue's
// keyword handling) resolve relative to now in loc; otherwise the trimmed
// input is returned as-is for validation against the available dates.
func Normalize(msg string, now time.Time, loc *time.Location) string {
	m := strings.ToLower(strings.TrimSpace(msg))
	if strings.Contains(m, "tomorrow") {
		return ISO(now.In(loc).AddDate(0, 0, 1))
	}
	if strings.Contains(m, "today") {
		return ISO(now.In(loc))
	}
	return strings.TrimSpace(msg)
}

// Extract pulls a date candidate out of free text: a relative term wins,
// otherwise the first embedded ISO date literal. Returns "" when the message
// carries no recognizable date, letting the caller fall back to offering the
// date options.
func Extract(msg string, now time.Time, loc *time.Location) string {
	m := strings.ToLower(msg)
	if strings.Contains(m, "tomorrow") {
		return ISO(now.In(loc).AddDate(0, 0, 1))
	}
	if strings.Contains(m, "today") {
		return ISO(now.In(loc))
	}
	if d := isoRE.FindString(msg); d != "" && Valid(d) {
		return d
	}
	return ""
}

// Valid reports whether s is a well-formed ISO calendar date.
func Valid(s string) bool {
	_, err := time.Parse(ISOFormat, s)
	return err == nil
}

// ISO formats t as an ISO calendar date in t's location.
func ISO(t time.Time) string { return t.Format(ISOFormat) }
