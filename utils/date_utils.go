package utils

import (
	"errors"
	"time"
)

const DayLayout = "2006-01-02"

var ErrInvertedRange = errors.New("date_from is after date_to")

// ParseDay parses a YYYY-MM-DD calendar day as local midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DayLayout, s, loc)
}

// DayRange converts an inclusive pair of calendar days into the half-open
// instant window [from, to+1 day). Empty strings leave that side open (zero time).
func DayRange(fromStr, toStr string, loc *time.Location) (from, to time.Time, err error) {
	if fromStr != "" {
		if from, err = ParseDay(fromStr, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		var day time.Time
		if day, err = ParseDay(toStr, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = day.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, ErrInvertedRange
	}
	return from, to, nil
}
