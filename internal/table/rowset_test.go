package table

import (
	"errors"
	"testing"
	"time"
)

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := New("dup", []string{"Rating", "Review", "Rating"})
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("expected ErrDuplicateColumn, got %v", err)
	}
}

func TestAppendPadsAndRejectsWideRows(t *testing.T) {
	rs, err := New("t", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if err := rs.Append([]Value{Num(1)}); err != nil {
		t.Fatalf("append short row: %v", err)
	}
	if !rs.Row(0)[1].IsNull() {
		t.Fatalf("expected padded null")
	}
	if err := rs.Append([]Value{Num(1), Num(2), Num(3)}); !errors.Is(err, ErrRowWidth) {
		t.Fatalf("expected ErrRowWidth, got %v", err)
	}
}

func TestKindPredominance(t *testing.T) {
	rs, _ := New("t", []string{"mixed", "text", "empty"})
	rows := [][]Value{
		{Num(1), Text("a"), Null()},
		{Num(2), Text("b"), Null()},
		{Text("x"), Num(3), Null()},
	}
	for _, r := range rows {
		if err := rs.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	s := rs.Schema()
	want := []Kind{KindNumber, KindText, KindNull}
	for i, k := range want {
		if s[i].Kind != k {
			t.Fatalf("column %s: got %s want %s", s[i].Name, s[i].Kind, k)
		}
	}
	if got := rs.NullCount("empty"); got != 3 {
		t.Fatalf("NullCount: got %d", got)
	}
}

func TestCoerceTimeAllOrNothing(t *testing.T) {
	rs, _ := New("t", []string{"Date", "Bad Date"})
	_ = rs.Append([]Value{Text("2024-01-05"), Text("2024-01-05")})
	_ = rs.Append([]Value{Null(), Text("not a date")})
	_ = rs.Append([]Value{Text("03/15/2024"), Text("2024-02-01")})

	if !rs.CoerceTime("Date") {
		t.Fatalf("expected Date to coerce")
	}
	ts, ok := rs.Row(2)[0].Timestamp()
	if !ok || ts.Month() != time.March || ts.Day() != 15 {
		t.Fatalf("unexpected parsed time %v", ts)
	}
	if !rs.Row(1)[0].IsNull() {
		t.Fatalf("null should stay null")
	}
	if rs.CoerceTime("Bad Date") {
		t.Fatalf("column with unparsable value must not coerce")
	}
	if _, ok := rs.Row(0)[1].Str(); !ok {
		t.Fatalf("failed coercion must leave text untouched")
	}
}

func TestWithPeriodColumn(t *testing.T) {
	rs, _ := New("t", []string{"when"})
	_ = rs.Append([]Value{Time(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC))})
	_ = rs.Append([]Value{Null()})
	out, err := rs.WithPeriodColumn("when", "year_month")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Columns()) != 1 {
		t.Fatalf("source must not change")
	}
	col, ok := out.Column("year_month")
	if !ok {
		t.Fatalf("missing period column")
	}
	if s, _ := col[0].Str(); s != "2024-02" {
		t.Fatalf("period: got %q", s)
	}
	if !col[1].IsNull() {
		t.Fatalf("expected null period for null date")
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		num  float64
	}{
		{"", KindNull, 0},
		{"  N/A ", KindNull, 0},
		{"nan", KindNull, 0},
		{"4", KindNumber, 4},
		{"4,5", KindNumber, 4.5},
		{"1.000,5", KindNumber, 1000.5},
		{"1,000.5", KindNumber, 1000.5},
		{"Inf", KindText, 0},
		{"great value", KindText, 0},
		{"2024-01-05", KindText, 0},
	}
	for _, tt := range tests {
		v := ParseCell(tt.in, NumberFormat{})
		if v.Kind() != tt.kind {
			t.Errorf("ParseCell(%q) kind = %s, want %s", tt.in, v.Kind(), tt.kind)
			continue
		}
		if tt.kind == KindNumber {
			if f, _ := v.Number(); f != tt.num {
				t.Errorf("ParseCell(%q) = %v, want %v", tt.in, f, tt.num)
			}
		}
	}
}

func TestPeriodOrderingAndString(t *testing.T) {
	a := Period{Year: 2023, Month: time.December}
	b := Period{Year: 2024, Month: time.January}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("ordering broken")
	}
	if a.String() != "2023-12" {
		t.Fatalf("got %s", a)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-01-15":           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"1/15/24 09:30":        time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		"2/3/24 14:00:05":      time.Date(2024, 2, 3, 14, 0, 5, 0, time.UTC),
		"2024-01-15T09:30:00Z": time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseTime(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseTime("not a date"); ok {
		t.Errorf("free text must not parse")
	}
}
