package report

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/chart"
	"github.com/KaramelBytes/reviewlens/internal/table"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *analysis.Result {
	agg := &analysis.RatingAggregate{
		Column: "Rating", Count: 5, Mean: 4.2, Median: 5, Std: 1.6, Min: 1, Max: 5,
		Distribution: []analysis.Bucket{{Rating: 5, Count: 4}, {Rating: 1, Count: 1}},
	}
	findings := []analysis.Finding{{
		Kind: analysis.DuplicateReviews, Message: "Found 2 duplicate reviews (40.0%)", Column: "Review", Count: 2, Rate: 0.4,
		Examples: []analysis.Example{{Text: strings.Repeat("long text ", 10), Count: 3}},
	}}
	return &analysis.Result{
		Overview: analysis.Overview{Source: "r.csv", Rows: 5, Columns: []string{"Rating", "Product", "Review"}, Completeness: 0.9},
		Roles:    analysis.RoleMap{Rating: "Rating", Product: "Product", ReviewText: "Review"},
		Rating:   agg,
		Periods: []analysis.PeriodAggregate{
			{Period: table.Period{Year: 2024, Month: time.January}, Count: 5, Rated: 5, MeanRating: 4.2},
		},
		Products:      &analysis.Ranking{Column: "Product", Groups: []analysis.GroupAggregate{{Key: "Phone", Mean: 4.5, Count: 4}, {Key: "Laptop", Mean: 3, Count: 1}}},
		ProductVolume: []analysis.KeyCount{{Key: "Phone", Count: 4, Share: 0.8}, {Key: "Laptop", Count: 1, Share: 0.2}},
		Findings:      findings,
		ProductInsights: []analysis.ProductInsight{{
			Product: "Phone", AvgRating: 4.5, ReviewCount: 4, GoodCount: 4, GoodReviewRate: 100,
			Pros: []analysis.KeywordHit{{Keyword: "great", Description: "performs great", Count: 2}},
		}},
		Insights:        analysis.SynthesizeInsights(agg, findings, analysis.DefaultOptions()),
		Recommendations: analysis.Recommend(agg, findings, analysis.DefaultOptions()),
		Notes:           []analysis.Note{{Feature: "region analysis", Role: analysis.RoleRegion, Message: "no region column found"}},
	}
}

func sampleMeta() Meta {
	return Meta{
		Input:     "r.csv",
		Generated: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		Charts:    []chart.Artifact{{Name: "rating_distribution", Title: "Rating distribution", Path: "charts/rating_distribution.png"}},
	}
}

func TestTextSectionsInOrder(t *testing.T) {
	out := Text(sampleResult(), sampleMeta())
	sections := []string{"[1. Summary]", "[2. Data overview]", "[3. Rating analysis]", "[4. Recommendations]", "[5. Appendix]"}
	last := -1
	for _, s := range sections {
		i := strings.Index(out, s)
		if i < 0 || i < last {
			t.Fatalf("section %s missing or out of order", s)
		}
		last = i
	}
	for _, want := range []string{
		"Generated: 2024-06-01 09:30:00",
		"5 stars: 4 (80.0%)",
		"Standard deviation: 1.60",
		"1. Phone: 4.50 stars (4 ratings)",
		"Unavailable: region analysis (no region column found)",
		"1. performs great (2 mentions - 'great')",
		"Weaknesses: no notable issues",
		"Rating distribution: charts/rating_distribution.png",
		"[continuous-improvement]",
		"2024-01: 5 reviews, average 4.20 stars",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, strings.Repeat("long text ", 10)) {
		t.Errorf("duplicate example should be clipped")
	}
}

func TestTextUndefinedStd(t *testing.T) {
	res := sampleResult()
	res.Rating.Std = math.NaN()
	if out := Text(res, sampleMeta()); !strings.Contains(out, "Standard deviation: n/a") {
		t.Fatalf("NaN std should render as n/a")
	}
}

func TestWriteJSON(t *testing.T) {
	res := sampleResult()
	res.Rating.Std = math.NaN()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, res, sampleMeta()); err != nil {
		t.Fatal(err)
	}
	var back struct {
		Meta   Meta `json:"meta"`
		Result struct {
			Findings []struct {
				Kind string `json:"kind"`
			} `json:"findings"`
			Periods []struct {
				Period string `json:"period"`
			} `json:"periods"`
		} `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Meta.Input != "r.csv" || back.Result.Findings[0].Kind != "duplicate_reviews" || back.Result.Periods[0].Period != "2024-01" {
		t.Fatalf("round trip: %+v", back)
	}
}

func TestWriteWorkbook(t *testing.T) {
	p := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteWorkbook(p, sampleResult(), sampleMeta()); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	want := []string{"Summary", "Distribution", "Trends", "Products", "Anomalies", "Keywords"}
	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("sheets: %v", got)
	}
	v, err := f.GetCellValue("Products", "B2")
	if err != nil || v != "Phone" {
		t.Fatalf("Products!B2 = %q, %v", v, err)
	}
}
