package wizard

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format for dates in payloads.
const DateLayout = "2006-01-02"

func stringValue(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func boolValue(value any) (bool, bool) {
	b, ok := value.(bool)
	return b, ok
}

// stringList accepts typed lists and JSON-decoded lists of strings.
func stringList(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []string:
		return typed, true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// intValue accepts Go integers and integral JSON numbers.
func intValue(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int8:
		return int(typed), true
	case int16:
		return int(typed), true
	case int32:
		return int(typed), true
	case int64:
		return int(typed), true
	case uint:
		return int(typed), true
	case uint32:
		return int(typed), true
	case float32:
		return integral(float64(typed))
	case float64:
		return integral(typed)
	case json.Number:
		n, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// dateValue accepts time.Time controls and date strings.
func dateValue(value any) (time.Time, bool) {
	switch typed := value.(type) {
	case time.Time:
		if typed.IsZero() {
			return time.Time{}, false
		}
		return calendarDate(typed), true
	case *time.Time:
		if typed == nil || typed.IsZero() {
			return time.Time{}, false
		}
		return calendarDate(*typed), true
	case string:
		parsed, err := ParseDate(typed)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// ParseDate reads YYYY-MM-DD, falling back to RFC 3339 timestamps whose date
// part is kept.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("wizard: empty date")
	}
	if parsed, err := time.Parse(DateLayout, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("wizard: invalid date %q", value)
	}
	return calendarDate(parsed), nil
}

// FormatDate renders a date in DateLayout; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
