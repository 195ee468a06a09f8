package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/table"
)

func TestAggregateRatingScenario(t *testing.T) {
	rs := ratingRows(t, "5", "5", "5", "5", "1")
	agg, ok := AggregateRating(rs, "Rating")
	if !ok {
		t.Fatal("expected aggregate")
	}
	if agg.Count != 5 || !approx(agg.Mean, 4.2) {
		t.Fatalf("count/mean: %d %v", agg.Count, agg.Mean)
	}
	if agg.Median != 5 || agg.Min != 1 || agg.Max != 5 {
		t.Fatalf("median/min/max: %v %v %v", agg.Median, agg.Min, agg.Max)
	}
	// population std of [5,5,5,5,1] is 1.6
	if !approx(agg.Std, 1.6) {
		t.Fatalf("std: %v", agg.Std)
	}
	if len(agg.Distribution) != 2 || agg.Distribution[0] != (Bucket{5, 4}) || agg.Distribution[1] != (Bucket{1, 1}) {
		t.Fatalf("distribution: %+v", agg.Distribution)
	}
}

func TestAggregateRatingInvariants(t *testing.T) {
	rs := ratingRows(t, "3", "", "4.5", "N/A", "2", "5", "1", "abc", "4")
	agg, ok := AggregateRating(rs, "Rating")
	if !ok {
		t.Fatal("expected aggregate")
	}
	if agg.Count != 6 {
		t.Fatalf("nulls and text must be skipped: count=%d", agg.Count)
	}
	if agg.Mean < agg.Min || agg.Mean > agg.Max {
		t.Fatalf("mean %v outside [%v,%v]", agg.Mean, agg.Min, agg.Max)
	}
	sum := 0
	for i, b := range agg.Distribution {
		sum += b.Count
		if i > 0 && agg.Distribution[i-1].Rating <= b.Rating {
			t.Fatalf("distribution not descending: %+v", agg.Distribution)
		}
	}
	if sum != agg.Count {
		t.Fatalf("distribution sums to %d, want %d", sum, agg.Count)
	}
	// even count: median interpolates between 3 and 4
	if !approx(agg.Median, 3.5) {
		t.Fatalf("median: %v", agg.Median)
	}
}

func TestAggregateRatingDegenerate(t *testing.T) {
	agg, ok := AggregateRating(ratingRows(t, "4"), "Rating")
	if !ok || !math.IsNaN(agg.Std) {
		t.Fatalf("single rating must give NaN std, got %+v", agg)
	}
	b, err := json.Marshal(agg)
	if err != nil {
		t.Fatalf("marshal NaN std: %v", err)
	}
	if !strings.Contains(string(b), `"std":null`) {
		t.Fatalf("std should encode as null: %s", b)
	}
	if _, ok := AggregateRating(ratingRows(t, "", "n/a"), "Rating"); ok {
		t.Fatal("all-null ratings must not aggregate")
	}
	if _, ok := AggregateRating(ratingRows(t, "1"), "Missing"); ok {
		t.Fatal("unknown column must not aggregate")
	}
}

func TestRatingShares(t *testing.T) {
	agg, _ := AggregateRating(ratingRows(t, "5", "4", "3", "2", "1"), "Rating")
	if !approx(agg.ShareAtLeast(4), 0.4) || !approx(agg.ShareAtMost(2), 0.4) || !approx(agg.Share(3), 0.2) {
		t.Fatalf("shares: %v %v %v", agg.ShareAtLeast(4), agg.ShareAtMost(2), agg.Share(3))
	}
	top, _ := agg.Dominant()
	if top.Rating != 5 {
		t.Fatalf("tie should favour the higher rating, got %v", top.Rating)
	}
}

func TestAggregateByDimensionOrdering(t *testing.T) {
	rs := mustRows(t, []string{"Product", "Rating"},
		[]string{"B", "4"},
		[]string{"A", "4"},
		[]string{"A", "4"},
		[]string{"C", "5"},
		[]string{"D", "2"},
		[]string{"", "1"},
		[]string{"E", ""},
	)
	r := AggregateByDimension(rs, "Product", "Rating")
	var keys []string
	for _, g := range r.Groups {
		keys = append(keys, g.Key)
	}
	// C (5.0), A (4.0, n=2), B (4.0, n=1), D (2.0); E has no rating, null product skipped
	if strings.Join(keys, ",") != "C,A,B,D" {
		t.Fatalf("order: %v", keys)
	}
	best := r.Best(2)
	if len(best) != 2 || best[0].Key != "C" || best[1].Key != "A" {
		t.Fatalf("best: %+v", best)
	}
	worst := r.Worst(2)
	if len(worst) != 2 || worst[0].Key != "D" || worst[1].Key != "B" {
		t.Fatalf("worst: %+v", worst)
	}
	if len(r.Worst(99)) != 4 || r.Len() != 4 {
		t.Fatalf("oversized n should return all groups")
	}
	if AggregateByDimension(rs, "Nope", "Rating") != nil {
		t.Fatalf("unknown column should give nil")
	}
	var nilRanking *Ranking
	if nilRanking.Best(3) != nil || nilRanking.Len() != 0 {
		t.Fatalf("nil ranking must be safe")
	}
}

func TestCountByDimension(t *testing.T) {
	rs := mustRows(t, []string{"Region"}, []string{"EU"}, []string{"US"}, []string{"EU"}, []string{""})
	got := CountByDimension(rs, "Region")
	if len(got) != 2 || got[0].Key != "EU" || got[0].Count != 2 || !approx(got[0].Share, 0.5) {
		t.Fatalf("counts: %+v", got)
	}
}

func TestAggregateByPeriod(t *testing.T) {
	rs := mustRows(t, []string{"Date", "Rating"},
		[]string{"2024-03-02", "5"},
		[]string{"2024-01-15", "4"},
		[]string{"2024-01-20", ""},
		[]string{"2024-03-09", "3"},
		[]string{"", "1"},
	)
	if !rs.CoerceTime("Date") {
		t.Fatal("coerce")
	}
	got := AggregateByPeriod(rs, "Date", "Rating")
	if len(got) != 2 {
		t.Fatalf("only observed months expected, got %+v", got)
	}
	jan, mar := got[0], got[1]
	if jan.Period != (table.Period{Year: 2024, Month: time.January}) || jan.Count != 2 || jan.Rated != 1 || jan.MeanRating != 4 {
		t.Fatalf("january: %+v", jan)
	}
	if mar.Count != 2 || !approx(mar.MeanRating, 4) {
		t.Fatalf("march: %+v", mar)
	}
	noRating := AggregateByPeriod(rs, "Date", "")
	if noRating[0].Rated != 0 || noRating[0].Count != 2 {
		t.Fatalf("without rating: %+v", noRating[0])
	}
	if AggregateByPeriod(rs, "", "Rating") != nil {
		t.Fatalf("unresolved date must give no periods")
	}
}
