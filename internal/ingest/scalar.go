// Package ingest turns loosely typed rows coming from a spreadsheet, a
// workbook import or a JSON payload into domain values. Nothing past this
// package sees a string where a number or a nested structure belongs.
package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const isoDate = "2006-01-02"

// excelEpoch is day zero for spreadsheet serial dates.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Number parses v as a float64. Anything that does not parse, including NaN
// and infinities, becomes 0.
func Number(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			f, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
			if err != nil {
				return 0
			}
		}
		return finite(f)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case bool:
		if t {
			return 1
		}
		return 0
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return finite(f)
}

// Int parses v the way a form field is parsed into a whole count: numbers are
// truncated toward zero and strings contribute their leading integer part
// ("12abc" is 12, "abc" is 0).
func Int(v any) int {
	if s, ok := v.(string); ok {
		return leadingInt(strings.TrimSpace(s))
	}
	return int(math.Trunc(Number(v)))
}

// OptionalInt parses a form field that may be left blank. It returns nil
// when s has no leading integer.
func OptionalInt(s string) *int {
	s = strings.TrimSpace(s)
	n, ok := leadingIntOK(s)
	if !ok {
		return nil
	}
	return &n
}

func leadingInt(s string) int {
	n, _ := leadingIntOK(s)
	return n
}

func leadingIntOK(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool interprets spreadsheet-style booleans. Unknown values yield def.
func Bool(v any, def bool) bool {
	switch t := v.(type) {
	case nil:
		return def
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "ya":
			return true
		case "false", "no", "n", "0", "tidak", "":
			return false
		}
		return def
	}
	return Number(v) != 0
}

// String renders v as trimmed text. Whole floats print without a fraction so
// numeric ids read back from a sheet stay stable.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
	}
	return strings.TrimSpace(cast.ToString(v))
}

// Date normalizes v to a YYYY-MM-DD calendar day in loc. Values already in
// that form are kept as-is; timestamps are converted to loc before the day is
// taken; numbers are read as spreadsheet serial dates. Unparseable input
// yields "".
func Date(v any, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.In(loc).Format(isoDate)
	case string:
		return dateFromString(strings.TrimSpace(t), loc)
	}

	serial := Number(v)
	if serial <= 0 {
		return ""
	}
	return excelEpoch.AddDate(0, 0, int(serial)).Format(isoDate)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"2 Jan 2006",
}

func dateFromString(s string, loc *time.Location) string {
	if s == "" {
		return ""
	}
	if len(s) == len(isoDate) {
		if _, err := time.Parse(isoDate, s); err == nil {
			return s
		}
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts.In(loc).Format(isoDate)
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		return excelEpoch.AddDate(0, 0, int(serial)).Format(isoDate)
	}
	return ""
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
