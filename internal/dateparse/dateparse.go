// Package dateparse turns raw date tokens from reminder emails into
// calendar dates under an explicit US/EU disambiguation policy.
package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

// Plausibility window relative to "now" in the caller's timezone. Reminder
// emails about dates outside this window are either stale or corrupted.
const (
	maxDaysPast    = 30
	maxYearsFuture = 2
	isoLayout      = "2006-01-02"
)

var (
	// ErrUnrecognized means no supported date format matched the token.
	ErrUnrecognized = errors.New("unrecognized date format")
	// ErrImplausible means the token parsed but falls outside the
	// plausibility window.
	ErrImplausible = errors.New("date outside plausible range")
)

var (
	ordinalSuffix = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)
	isoPattern    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	slashPattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
)

// Textual layouts are unambiguous regardless of locale. Tried in order
// after ISO and the locale-selected slash format.
var textualLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Parse resolves a raw date token to a calendar date. Ambiguous slash
// dates follow the locale: US reads month/day/year, EU day/month/year, so
// "01/02/2026" is Jan 2 under US and Feb 1 under EU. The result is
// validated against the plausibility window evaluated in tz.
func Parse(raw string, locale models.DateLocale, now time.Time, tz *time.Location) (time.Time, error) {
	token := ordinalSuffix.ReplaceAllString(strings.TrimSpace(raw), "$1")
	if token == "" {
		return time.Time{}, ErrUnrecognized
	}

	d, err := parseToken(token, locale, tz)
	if err != nil {
		return time.Time{}, err
	}
	if err := checkPlausible(d, now, tz); err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// ParseToISO is Parse with the result formatted as YYYY-MM-DD.
func ParseToISO(raw string, locale models.DateLocale, now time.Time, tz *time.Location) (string, error) {
	d, err := Parse(raw, locale, now, tz)
	if err != nil {
		return "", err
	}
	return d.Format(isoLayout), nil
}

func parseToken(token string, locale models.DateLocale, tz *time.Location) (time.Time, error) {
	// ISO is always unambiguous.
	if m := isoPattern.FindStringSubmatch(token); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), tz)
	}

	if m := slashPattern.FindStringSubmatch(token); m != nil {
		a, b, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if year < 100 {
			year += 2000
		}
		month, day := a, b
		if locale == models.LocaleEU {
			month, day = b, a
		}
		return makeDate(year, month, day, tz)
	}

	for _, layout := range textualLayouts {
		if d, err := time.ParseInLocation(layout, token, tz); err == nil {
			return d, nil
		}
	}

	return time.Time{}, ErrUnrecognized
}

// makeDate builds a date and rejects impossible calendar values. time.Date
// silently normalizes Feb 30 to Mar 2, so the components are compared
// after construction.
func makeDate(year, month, day int, tz *time.Location) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrUnrecognized
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, tz)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, ErrUnrecognized
	}
	return d, nil
}

func checkPlausible(d, now time.Time, tz *time.Location) error {
	// Evaluate "today" in the caller's timezone so a paste near local
	// midnight does not shift the window by a day.
	local := now.In(tz)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)

	if d.Before(today.AddDate(0, 0, -maxDaysPast)) {
		return fmt.Errorf("%w: %s is more than %d days in the past", ErrImplausible, d.Format(isoLayout), maxDaysPast)
	}
	if d.After(today.AddDate(maxYearsFuture, 0, 0)) {
		return fmt.Errorf("%w: %s is more than %d years in the future", ErrImplausible, d.Format(isoLayout), maxYearsFuture)
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
