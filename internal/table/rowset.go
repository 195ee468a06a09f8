package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateColumn is returned when a header repeats a column name.
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrRowWidth is returned when a row has more cells than the header.
	ErrRowWidth = errors.New("row wider than header")
)

// RowSet is an in-memory table: unique column names and rows in insertion order.
// Rows returned by Row share storage with the set and must be treated as read-only.
type RowSet struct {
	Name    string
	columns []string
	index   map[string]int
	rows    [][]Value
}

// ColumnInfo describes one column of a RowSet.
type ColumnInfo struct {
	Name string
	Kind Kind
}

// Schema is the ordered column list with inferred kinds.
type Schema []ColumnInfo

// New creates an empty RowSet with the given header.
func New(name string, columns []string) (*RowSet, error) {
	rs := &RowSet{Name: name, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, dup := rs.index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		rs.index[c] = i
		rs.columns = append(rs.columns, c)
	}
	return rs, nil
}

// Append adds a row. Short rows are padded with nulls.
func (rs *RowSet) Append(vals []Value) error {
	if len(vals) > len(rs.columns) {
		return fmt.Errorf("%w: %d cells for %d columns", ErrRowWidth, len(vals), len(rs.columns))
	}
	row := make([]Value, len(rs.columns))
	copy(row, vals)
	rs.rows = append(rs.rows, row)
	return nil
}

func (rs *RowSet) Columns() []string {
	out := make([]string, len(rs.columns))
	copy(out, rs.columns)
	return out
}

func (rs *RowSet) Len() int { return len(rs.rows) }

func (rs *RowSet) Row(i int) []Value { return rs.rows[i] }

// Lookup returns the index of a column by exact name.
func (rs *RowSet) Lookup(name string) (int, bool) {
	i, ok := rs.index[name]
	return i, ok
}

// Column returns a copy of the named column's values.
func (rs *RowSet) Column(name string) ([]Value, bool) {
	idx, ok := rs.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(rs.rows))
	for i, r := range rs.rows {
		out[i] = r[idx]
	}
	return out, true
}

// NullCount returns the number of null cells in the named column.
func (rs *RowSet) NullCount(name string) int {
	idx, ok := rs.index[name]
	if !ok {
		return 0
	}
	n := 0
	for _, r := range rs.rows {
		if r[idx].IsNull() {
			n++
		}
	}
	return n
}

// Kind infers the predominant kind of a column. Ties favour numeric, then
// datetime, then text; a column with only nulls is KindNull.
func (rs *RowSet) Kind(name string) Kind {
	idx, ok := rs.index[name]
	if !ok {
		return KindNull
	}
	var num, dt, txt int
	for _, r := range rs.rows {
		switch r[idx].Kind() {
		case KindNumber:
			num++
		case KindTime:
			dt++
		case KindText:
			txt++
		}
	}
	switch {
	case num >= dt && num >= txt && num > 0:
		return KindNumber
	case dt >= txt && dt > 0:
		return KindTime
	case txt > 0:
		return KindText
	default:
		return KindNull
	}
}

func (rs *RowSet) Schema() Schema {
	s := make(Schema, len(rs.columns))
	for i, c := range rs.columns {
		s[i] = ColumnInfo{Name: c, Kind: rs.Kind(c)}
	}
	return s
}

// CoerceTime converts the named column to timestamps in place. Every non-null
// value must be a timestamp already or text that parses as one; otherwise the
// column is left untouched and false is returned.
func (rs *RowSet) CoerceTime(name string) bool {
	idx, ok := rs.index[name]
	if !ok {
		return false
	}
	parsed := make([]Value, len(rs.rows))
	seen := 0
	for i, r := range rs.rows {
		v := r[idx]
		switch v.Kind() {
		case KindNull:
			parsed[i] = v
			continue
		case KindTime:
			parsed[i] = v
		case KindText:
			t, ok := ParseTime(strings.TrimSpace(v.str))
			if !ok {
				return false
			}
			parsed[i] = Time(t)
		default:
			return false
		}
		seen++
	}
	if seen == 0 {
		return false
	}
	for i, r := range rs.rows {
		r[idx] = parsed[i]
	}
	return true
}

// WithPeriodColumn returns a copy of the set with an extra text column holding
// the calendar month (YYYY-MM) of dateCol. Rows without a timestamp get null.
func (rs *RowSet) WithPeriodColumn(dateCol, periodCol string) (*RowSet, error) {
	idx, ok := rs.index[dateCol]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", dateCol)
	}
	out, err := New(rs.Name, append(rs.Columns(), periodCol))
	if err != nil {
		return nil, err
	}
	for _, r := range rs.rows {
		row := make([]Value, len(r)+1)
		copy(row, r)
		if t, ok := r[idx].Timestamp(); ok {
			row[len(r)] = Text(PeriodOf(t).String())
		}
		out.rows = append(out.rows, row)
	}
	return out, nil
}
