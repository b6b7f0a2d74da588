package util

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const DateLayout = "02-01-2006"

var (
	dayFirstLayouts = []string{
		"2-1-2006 15:04:05",
		"2/1/2006 15:04:05",
		"2-1-2006 15:04",
		"2/1/2006 15:04",
		"2-1-2006",
		"2/1/2006",
		"2.1.2006",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02",
	}
	// tried only once the day-first reading failed, e.g. 01-13-2024
	monthFirstLayouts = []string{
		"1-2-2006 15:04:05",
		"1/2/2006 15:04:05",
		"1-2-2006",
		"1/2/2006",
	}
)

// ParseDayFirst parses a date written day first. The second result is false
// for anything that does not read as a date.
func ParseDayFirst(input string) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range monthFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToDate coerces a cell value to a date: time values pass through, text is
// parsed day first and bare numbers are taken as Excel serial dates.
func ToDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case float64:
		return serialDate(t)
	case int:
		return serialDate(float64(t))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return serialDate(f)
		}
		return ParseDayFirst(t)
	default:
		return time.Time{}, false
	}
}

func serialDate(f float64) (time.Time, bool) {
	if f < 1 || f > 2958465 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ElapsedDays is the whole number of days from event to ref, floored like a
// timedelta's days component, so future events give negative values.
func ElapsedDays(ref, event time.Time) int {
	r := wallClock(ref)
	e := wallClock(event)
	return int(math.Floor(r.Sub(e).Hours() / 24))
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
