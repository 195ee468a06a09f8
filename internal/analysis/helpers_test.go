package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/table"
)

// mustRows builds a row set from raw cells the way the loader does.
func mustRows(t *testing.T, header []string, records ...[]string) *table.RowSet {
	t.Helper()
	rs, err := table.New("fixture", header)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range records {
		vals := make([]table.Value, len(rec))
		for i, c := range rec {
			vals[i] = table.ParseCell(c, table.NumberFormat{})
		}
		if err := rs.Append(vals); err != nil {
			t.Fatal(err)
		}
	}
	return rs
}

func ratingRows(t *testing.T, ratings ...string) *table.RowSet {
	t.Helper()
	recs := make([][]string, len(ratings))
	for i, r := range ratings {
		recs[i] = []string{r}
	}
	return mustRows(t, []string{"Rating"}, recs...)
}

func fixedNow() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

func testOptions() Options {
	o := DefaultOptions()
	o.Now = fixedNow
	return o
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
