package analysis

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/table"
)

// Bucket is one rating value and how many rows carry it.
type Bucket struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

// RatingAggregate summarizes the non-null ratings of one column.
type RatingAggregate struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	// Std is the population standard deviation; NaN when Count <= 1.
	Std float64 `json:"std"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Distribution is ordered by rating value, highest first.
	Distribution []Bucket `json:"distribution"`
}

// MarshalJSON writes an undefined Std as null.
func (a RatingAggregate) MarshalJSON() ([]byte, error) {
	type plain RatingAggregate
	out := struct {
		plain
		Std *float64 `json:"std"`
	}{plain: plain(a)}
	if !math.IsNaN(a.Std) {
		out.Std = &a.Std
	}
	return json.Marshal(out)
}

// CountOf returns the number of ratings equal to v.
func (a *RatingAggregate) CountOf(v float64) int {
	for _, b := range a.Distribution {
		if b.Rating == v {
			return b.Count
		}
	}
	return 0
}

// Share returns the fraction of ratings equal to v.
func (a *RatingAggregate) Share(v float64) float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.CountOf(v)) / float64(a.Count)
}

// ShareAtLeast returns the fraction of ratings >= v.
func (a *RatingAggregate) ShareAtLeast(v float64) float64 {
	return a.shareWhere(func(r float64) bool { return r >= v })
}

// ShareAtMost returns the fraction of ratings <= v.
func (a *RatingAggregate) ShareAtMost(v float64) float64 {
	return a.shareWhere(func(r float64) bool { return r <= v })
}

func (a *RatingAggregate) shareWhere(keep func(float64) bool) float64 {
	if a.Count == 0 {
		return 0
	}
	n := 0
	for _, b := range a.Distribution {
		if keep(b.Rating) {
			n += b.Count
		}
	}
	return float64(n) / float64(a.Count)
}

// Dominant returns the most frequent bucket. Ties go to the higher rating.
func (a *RatingAggregate) Dominant() (Bucket, bool) {
	var best Bucket
	found := false
	for _, b := range a.Distribution {
		if !found || b.Count > best.Count {
			best, found = b, true
		}
	}
	return best, found
}

// AggregateRating summarizes the numeric values of ratingColumn. Nulls and
// non-numeric cells are skipped. It returns false when the column is missing
// or holds no ratings.
func AggregateRating(rows *table.RowSet, ratingColumn string) (*RatingAggregate, bool) {
	vals := ratings(rows, ratingColumn)
	if len(vals) == 0 {
		return nil, false
	}
	agg := &RatingAggregate{Column: ratingColumn, Count: len(vals)}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	agg.Min, agg.Max = sorted[0], sorted[len(sorted)-1]
	agg.Median = quantile(sorted, 0.5)

	// Welford keeps the running mean stable on long columns.
	var mean, m2 float64
	for i, v := range vals {
		d := v - mean
		mean += d / float64(i+1)
		m2 += d * (v - mean)
	}
	agg.Mean = mean
	if len(vals) > 1 {
		agg.Std = math.Sqrt(m2 / float64(len(vals)))
	} else {
		agg.Std = math.NaN()
	}

	for i := len(sorted) - 1; i >= 0; {
		v := sorted[i]
		j := i
		for j >= 0 && sorted[j] == v {
			j--
		}
		agg.Distribution = append(agg.Distribution, Bucket{Rating: v, Count: i - j})
		i = j
	}
	return agg, true
}

// GroupAggregate is the mean rating of one dimension value.
type GroupAggregate struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Ranking holds groups ordered best first: mean desc, count desc, key asc.
type Ranking struct {
	Column string           `json:"column"`
	Groups []GroupAggregate `json:"groups"`
}

func (r *Ranking) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Groups)
}

// Best returns up to n groups from the top of the ranking.
func (r *Ranking) Best(n int) []GroupAggregate {
	if r == nil {
		return nil
	}
	if n > len(r.Groups) || n < 0 {
		n = len(r.Groups)
	}
	return append([]GroupAggregate(nil), r.Groups[:n]...)
}

// Worst returns up to n groups from the bottom, lowest mean first.
func (r *Ranking) Worst(n int) []GroupAggregate {
	if r == nil {
		return nil
	}
	if n > len(r.Groups) || n < 0 {
		n = len(r.Groups)
	}
	out := make([]GroupAggregate, 0, n)
	for i := len(r.Groups) - 1; i >= len(r.Groups)-n; i-- {
		out = append(out, r.Groups[i])
	}
	return out
}

// AggregateByDimension groups rows by the non-null values of dimensionColumn
// and averages the non-null ratings of each group. Groups without any rating
// are left out. It returns nil when either column is missing.
func AggregateByDimension(rows *table.RowSet, dimensionColumn, ratingColumn string) *Ranking {
	if rows == nil {
		return nil
	}
	di, ok := rows.Lookup(dimensionColumn)
	if !ok {
		return nil
	}
	ri, ok := rows.Lookup(ratingColumn)
	if !ok {
		return nil
	}
	type acc struct {
		sum float64
		n   int
	}
	groups := map[string]*acc{}
	for i := 0; i < rows.Len(); i++ {
		row := rows.Row(i)
		if row[di].IsNull() {
			continue
		}
		v, ok := row[ri].Number()
		if !ok {
			continue
		}
		k := row[di].Key()
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sum += v
		a.n++
	}
	out := &Ranking{Column: dimensionColumn, Groups: make([]GroupAggregate, 0, len(groups))}
	for k, a := range groups {
		out.Groups = append(out.Groups, GroupAggregate{Key: k, Mean: a.sum / float64(a.n), Count: a.n})
	}
	sort.Slice(out.Groups, func(i, j int) bool {
		a, b := out.Groups[i], out.Groups[j]
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Key < b.Key
	})
	return out
}

// KeyCount is a row count for one dimension value.
type KeyCount struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// CountByDimension counts rows per non-null value of column, count desc then
// key asc. Share is relative to all rows, nulls included.
func CountByDimension(rows *table.RowSet, column string) []KeyCount {
	if rows == nil || rows.Len() == 0 {
		return nil
	}
	vals, ok := rows.Column(column)
	if !ok {
		return nil
	}
	counts := map[string]int{}
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		counts[v.Key()]++
	}
	out := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, KeyCount{Key: k, Count: c, Share: float64(c) / float64(rows.Len())})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// PeriodAggregate is the review volume of one calendar month. MeanRating is
// only meaningful when Rated > 0.
type PeriodAggregate struct {
	Period     table.Period `json:"period"`
	Count      int          `json:"count"`
	Rated      int          `json:"rated"`
	MeanRating float64      `json:"mean_rating"`
}

// AggregateByPeriod buckets rows by the calendar month of dateColumn. Only
// observed months appear, in chronological order. ratingColumn may be empty.
func AggregateByPeriod(rows *table.RowSet, dateColumn, ratingColumn string) []PeriodAggregate {
	if rows == nil || dateColumn == "" {
		return nil
	}
	di, ok := rows.Lookup(dateColumn)
	if !ok {
		return nil
	}
	ri, withRating := rows.Lookup(ratingColumn)
	type acc struct {
		n, rated int
		sum      float64
	}
	buckets := map[table.Period]*acc{}
	for i := 0; i < rows.Len(); i++ {
		row := rows.Row(i)
		t, ok := row[di].Timestamp()
		if !ok {
			continue
		}
		p := table.PeriodOf(t)
		a := buckets[p]
		if a == nil {
			a = &acc{}
			buckets[p] = a
		}
		a.n++
		if withRating {
			if v, ok := row[ri].Number(); ok {
				a.sum += v
				a.rated++
			}
		}
	}
	out := make([]PeriodAggregate, 0, len(buckets))
	for p, a := range buckets {
		pa := PeriodAggregate{Period: p, Count: a.n, Rated: a.rated}
		if a.rated > 0 {
			pa.MeanRating = a.sum / float64(a.rated)
		}
		out = append(out, pa)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out
}

// TimeRange returns the earliest and latest timestamp across all time columns.
func TimeRange(rows *table.RowSet) (start, end time.Time, ok bool) {
	if rows == nil {
		return
	}
	for i := 0; i < rows.Len(); i++ {
		for _, v := range rows.Row(i) {
			t, isTime := v.Timestamp()
			if !isTime {
				continue
			}
			if !ok || t.Before(start) {
				start = t
			}
			if !ok || t.After(end) {
				end = t
			}
			ok = true
		}
	}
	return
}

func ratings(rows *table.RowSet, column string) []float64 {
	if rows == nil || column == "" {
		return nil
	}
	idx, ok := rows.Lookup(column)
	if !ok {
		return nil
	}
	out := make([]float64, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		if v, ok := rows.Row(i)[idx].Number(); ok {
			out = append(out, v)
		}
	}
	return out
}

// quantile expects sorted input and interpolates linearly between order statistics.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
