package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NumberFormat pins the decimal and thousands separators. Zero values auto-detect.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// missingMarkers are cell spellings read as null, matching what spreadsheet
// exports commonly use for "no value".
var missingMarkers = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "<NA>": {}, "N/A": {}, "NA": {}, "n/a": {},
	"NULL": {}, "null": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {}, "None": {},
}

// IsMissing reports whether a raw cell is blank or a missing-value marker.
func IsMissing(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return true
	}
	_, ok := missingMarkers[s]
	return ok
}

// ParseCell turns a raw cell string into a Value: blank or a missing marker is
// null, numbers are numeric, anything else is text. Timestamps stay text until
// a column is coerced, so a date-looking product code is never silently
// reinterpreted.
func ParseCell(raw string, nf NumberFormat) Value {
	if IsMissing(raw) {
		return Null()
	}
	s := strings.TrimSpace(raw)
	if f, ok := ParseNumber(s, nf); ok {
		return Num(f)
	}
	return Text(s)
}

// ParseNumber parses locale-formatted numbers such as "1.000,5", "1,000.5" or "12%".
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec, thou := nf.Decimal, nf.Thousands
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Month-first layouts come before day-first ones; a day-first value only
// parses when its first field cannot be a month.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"01-02-06",
	"1/2/06",
	"1/2/06 15:04",
	"1/2/06 15:04:05",
	"02/01/2006",
	"2006年1月2日",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseTime tries the known layouts in order. Results are in UTC.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
