package etl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Record is one row of the export: a mapping of column name to the raw scalar
// decoded from JSON. The pipeline mutates records in place; after projection
// every value is one of string, int64, float64, bool or nil.
type Record map[string]any

// columnSet returns the union of keys across all records. Column presence is
// set-level, the way a DataFrame sees it: a field missing on an individual
// row is a null, not a missing column.
func columnSet(records []Record) map[string]struct{} {
	cols := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec {
			cols[k] = struct{}{}
		}
	}
	return cols
}

// asString renders any scalar as text.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// asFloat parses a scalar as a decimal number, normalizing a comma decimal
// separator first.
func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("not a decimal number: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a decimal number: %v (%T)", v, v)
	}
}

// asInt parses a scalar as an integer. Numbers are truncated; numeric text
// must parse as an integer.
func asInt(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not an integer: %v (%T)", v, v)
	}
}

// truthy coerces a scalar to a boolean. Absent values are false; text is true
// unless it spells a boolean literal.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int64:
		return t != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return t != ""
	default:
		return true
	}
}

// titleCase uppercases the first letter of every word and lowercases the
// rest, treating any non-letter as a word boundary ("mercedes-benz" becomes
// "Mercedes-Benz").
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// dateLayouts are the date-text shapes accepted for fecha_viaje.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
}

// parseDate parses free-form date text into the canonical YYYY-MM-DD form,
// dropping any time component.
func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("not a date: %q", s)
}
