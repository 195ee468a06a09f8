package analysis

import (
	"encoding/json"
	"errors"
	"testing"
)

func reviewFixture(t *testing.T) [][]string {
	t.Helper()
	return [][]string{
		{"2024-01-03", "5", "Phone", "US", "great quality, fast"},
		{"2024-01-09", "4", "Phone", "EU", "good value"},
		{"2024-02-11", "1", "Phone", "US", "broke after a week"},
		{"2024-02-14", "5", "Laptop", "EU", "amazing and fast"},
		{"2024-02-20", "2", "Laptop", "", "slow, poor battery"},
		{"2024-02-21", "2", "Laptop", "US", "ok"},
		{"2024-02-22", "", "Tablet", "EU", ""},
	}
}

func TestRunFullPipeline(t *testing.T) {
	rs := mustRows(t, []string{"Review Date", "Rating", "Product", "Region", "Review"}, reviewFixture(t)...)
	res, err := Run(rs, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Roles != (RoleMap{Date: "Review Date", Rating: "Rating", Product: "Product", Region: "Region", ReviewText: "Review"}) {
		t.Fatalf("roles: %+v", res.Roles)
	}
	if res.Rating == nil || res.Rating.Count != 6 {
		t.Fatalf("rating: %+v", res.Rating)
	}
	if len(res.Periods) != 2 || res.Periods[1].Count != 5 {
		t.Fatalf("periods: %+v", res.Periods)
	}
	if res.Products.Len() != 2 || res.Products.Best(1)[0].Key != "Phone" {
		t.Fatalf("product ranking: %+v", res.Products)
	}
	if len(res.ProductInsights) != 3 || res.ProductInsights[2].Product != "Tablet" {
		t.Fatalf("insights: %+v", res.ProductInsights)
	}
	if res.Overview.Rows != 7 || res.Overview.TimeStart == nil || res.Overview.TimeStart.Day() != 3 {
		t.Fatalf("overview: %+v", res.Overview)
	}
	if len(res.Notes) != 0 {
		t.Fatalf("notes: %+v", res.Notes)
	}
	if len(res.Insights) == 0 || len(res.Recommendations) == 0 {
		t.Fatalf("missing insights or recommendations")
	}
	if _, err := json.Marshal(res); err != nil {
		t.Fatalf("result must encode: %v", err)
	}
}

func TestRunDegradesWithoutRoles(t *testing.T) {
	rs := mustRows(t, []string{"Text", "Value"}, []string{"a", "1"}, []string{"b", "2"})
	res, err := Run(rs, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Rating != nil || res.Periods != nil || res.Products != nil || res.ProductInsights != nil {
		t.Fatalf("expected empty analyses: %+v", res)
	}
	if len(res.Notes) != 5 {
		t.Fatalf("expected a note per unresolved role, got %+v", res.Notes)
	}
	if len(res.Recommendations) != 1 {
		t.Fatalf("general recommendation expected: %+v", res.Recommendations)
	}
	if _, err := Run(nil, testOptions()); !errors.Is(err, ErrNoRowSet) {
		t.Fatalf("nil rows: %v", err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	header := []string{"Review Date", "Rating", "Product", "Region", "Review"}
	a, err := Run(mustRows(t, header, reviewFixture(t)...), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	rs := mustRows(t, header, reviewFixture(t)...)
	b, _ := Run(rs, testOptions())
	c, _ := Run(rs, testOptions())
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	jc, _ := json.Marshal(c)
	if string(ja) != string(jb) || string(jb) != string(jc) {
		t.Fatalf("runs differ:\n%s\n%s\n%s", ja, jb, jc)
	}
}
