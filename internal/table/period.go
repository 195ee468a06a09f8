package table

import (
	"fmt"
	"time"
)

// Period is a calendar-month bucket.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf buckets t into its calendar month.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Before reports whether p is chronologically earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// String renders the period as YYYY-MM.
func (p Period) String() string { return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month)) }

// MarshalText lets periods appear as plain strings in JSON output.
func (p Period) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
