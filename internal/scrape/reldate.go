package scrape

import (
	"strconv"
	"strings"
	"time"
)

// unitKeyword maps a unit word appearing in a relative publish phrase to its
// duration. Month and year are fixed 30/365-day approximations, not
// calendar-aware.
type unitKeyword struct {
	word string
	dur  time.Duration
}

// UnitTable is an ordered unit vocabulary. Order matters: the first keyword
// contained in the phrase wins.
type UnitTable []unitKeyword

const day = 24 * time.Hour

// DefaultUnits covers the vocabularies the upstream serves depending on the
// request locale: English and Italian.
var DefaultUnits = UnitTable{
	{"hour", time.Hour},
	{"day", day},
	{"week", 7 * day},
	{"month", 30 * day},
	{"year", 365 * day},
	{"ora", time.Hour},
	{"ore", time.Hour},
	{"giorn", day},
	{"settiman", 7 * day},
	{"mes", 30 * day},
	{"ann", 365 * day},
}

// NormalizeDate converts a relative publish phrase ("3 weeks ago") into an
// absolute DD/MM/YYYY date relative to now. Empty input returns empty; a
// phrase with no parseable magnitude or no recognized unit is passed through
// unchanged. Never fails.
func NormalizeDate(text string, now time.Time, units UnitTable) string {
	if text == "" {
		return ""
	}
	if units == nil {
		units = DefaultUnits
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return text
	}
	n, err := strconv.Atoi(stripNonDigits(fields[0]))
	if err != nil {
		return text
	}

	lower := strings.ToLower(text)
	for _, u := range units {
		if strings.Contains(lower, u.word) {
			return now.Add(-time.Duration(n) * u.dur).Format("02/01/2006")
		}
	}
	return text
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
