package table

import (
	"strconv"
	"time"
)

// Kind is the type tag of a cell value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "numeric"
	case KindText:
		return "text"
	case KindTime:
		return "datetime"
	default:
		return "null"
	}
}

// Value is a typed scalar cell. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	ts   time.Time
}

// Null returns the missing-value marker.
func Null() Value { return Value{} }

// Num wraps a number.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a string. Empty strings are kept as text; loaders decide what counts as blank.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Time wraps a timestamp.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the raw string of a text value.
func (v Value) Str() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.str, true
}

func (v Value) Timestamp() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.ts, true
}

// Key renders the value as a canonical string, used for grouping and
// duplicate detection. Null renders as "".
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.str
	case KindTime:
		return v.ts.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func (v Value) String() string { return v.Key() }
