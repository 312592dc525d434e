package fussballde

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// twoDigitYearPivot splits dotted 2-digit years: 00-49 map to the
// 2000s, 50-99 to the 1900s.
const twoDigitYearPivot = 50

var (
	isoDateRegex    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dottedDateRegex = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2}|\d{4})$`)
	weekdayRegex    = regexp.MustCompile(`^[\p{L}]{2,3}\.?\s*,\s*`)
	clockTimeRegex  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// NormalizeDate converts a provider date string into a canonical ISO
// calendar date. Supported inputs: ISO (2025-10-25), day-first dotted
// with an optional leading weekday abbreviation (Sa, 25.10.2025), and
// 2-digit-year dotted (25.10.25). Returns "" for anything else; it
// never panics on garbage.
func NormalizeDate(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	value = weekdayRegex.ReplaceAllString(value, "")
	value = strings.TrimSpace(value)

	if match := isoDateRegex.FindStringSubmatch(value); match != nil {
		return buildISODate(match[1], match[2], match[3])
	}

	if match := dottedDateRegex.FindStringSubmatch(value); match != nil {
		year := match[3]
		if len(year) == 2 {
			year = expandTwoDigitYear(year)
		}
		return buildISODate(year, match[2], match[1])
	}

	return ""
}

// NormalizeTime extracts a HH:MM clock time from a provider value such
// as "15:00" or "15:00 Uhr". Returns "" when no time is present.
func NormalizeTime(raw string) string {
	match := clockTimeRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return ""
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil || hour > 23 {
		return ""
	}
	minute, err := strconv.Atoi(match[2])
	if err != nil || minute > 59 {
		return ""
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func expandTwoDigitYear(raw string) string {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return ""
	}
	if value < twoDigitYearPivot {
		return strconv.Itoa(2000 + value)
	}
	return strconv.Itoa(1900 + value)
}

func buildISODate(year, month, day string) string {
	y, err := strconv.Atoi(year)
	if err != nil {
		return ""
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return ""
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return ""
	}

	parsed := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (32.13. would roll over), so an
	// input that does not round-trip was not a real calendar day.
	if parsed.Year() != y || parsed.Month() != time.Month(m) || parsed.Day() != d {
		return ""
	}

	return parsed.Format("2006-01-02")
}
