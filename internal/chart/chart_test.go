package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/table"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Rating: &analysis.RatingAggregate{
			Column: "Rating", Count: 5, Mean: 4.2,
			Distribution: []analysis.Bucket{{Rating: 5, Count: 4}, {Rating: 1, Count: 1}},
		},
		Periods: []analysis.PeriodAggregate{
			{Period: table.Period{Year: 2024, Month: 1}, Count: 2, Rated: 2, MeanRating: 4.5},
			{Period: table.Period{Year: 2024, Month: 2}, Count: 3},
		},
		Products: &analysis.Ranking{Column: "Product", Groups: []analysis.GroupAggregate{
			{Key: "Phone", Mean: 4.5, Count: 2}, {Key: "Laptop", Mean: 3, Count: 3},
		}},
		ProductInsights: []analysis.ProductInsight{
			{Product: "Phone", ReviewCount: 2, GoodCount: 2, GoodReviewRate: 100},
			{Product: "Laptop", ReviewCount: 3, GoodReviewRate: 0},
		},
	}
}

func TestRenderAllWritesPNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	arts, errs := RenderAll(sampleResult(), DefaultOptions(dir))
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	// no region ranking in the result, so four charts
	if len(arts) != 4 {
		t.Fatalf("artifacts: %+v", arts)
	}
	for _, a := range arts {
		b, err := os.ReadFile(a.Path)
		if err != nil {
			t.Fatalf("%s: %v", a.Name, err)
		}
		if !bytes.HasPrefix(b, pngMagic) {
			t.Fatalf("%s is not a PNG", a.Name)
		}
	}
}

func TestSinglePointAndEmptyInputs(t *testing.T) {
	dir := t.TempDir()
	opt := DefaultOptions(dir)
	single := []analysis.PeriodAggregate{{Period: table.Period{Year: 2024, Month: 3}, Count: 1, Rated: 1, MeanRating: 5}}
	if err := Trends(single, filepath.Join(dir, "t.png"), opt); err != nil {
		t.Fatalf("single month: %v", err)
	}
	if err := Trends(nil, filepath.Join(dir, "x.png"), opt); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if err := RatingDistribution(nil, filepath.Join(dir, "x.png"), opt); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if err := Ranking(nil, "x", filepath.Join(dir, "x.png"), opt); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if arts, errs := RenderAll(&analysis.Result{}, opt); len(arts) != 0 || len(errs) != 0 {
		t.Fatalf("empty result: %v %v", arts, errs)
	}
}
