package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reSpaces        = regexp.MustCompile(`\s+`)
	reSubjectUnsafe = regexp.MustCompile(`[/:*?"<>|]`)
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(strings.ReplaceAll(input, "\u00A0", " "), " "))
}

// SanitizeSubject makes a mail subject usable as a file name.
func SanitizeSubject(subject string) string {
	clean := reSubjectUnsafe.ReplaceAllString(subject, "")
	r := []rune(clean)
	if len(r) > 120 {
		r = r[:120]
	}
	return string(r)
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// NonEmpty returns nil for blank input.
func NonEmpty(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Text renders a cell value the way it reads in a spreadsheet.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		return Deref(t)
	case time.Time:
		return FormatDate(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Number reads ints, floats and numeric text.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(t, ",", ".")), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
