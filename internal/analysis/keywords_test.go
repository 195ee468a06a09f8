package analysis

import (
	"testing"
)

func TestExtractProductInsightsKeywordCounts(t *testing.T) {
	rs := mustRows(t, []string{"Product", "Rating", "Review"},
		[]string{"P", "5", "great quality"},
		[]string{"P", "4", "GREAT great great"},
		[]string{"P", "3", "great but meh"},
		[]string{"P", "", "great"},
	)
	dict := []Keyword{{"great", "X"}}
	got := ExtractProductInsights(rs, "Product", "Rating", "Review", dict, DefaultNegative(), testOptions())
	if len(got) != 1 {
		t.Fatalf("insights: %+v", got)
	}
	p := got[0]
	if len(p.Pros) != 1 || p.Pros[0] != (KeywordHit{"great", "X", 2}) {
		t.Fatalf("pros: %+v", p.Pros)
	}
	if len(p.Cons) != 0 {
		t.Fatalf("cons should be empty: %+v", p.Cons)
	}
	// rating 3 and the unrated row count toward volume but are neither good nor bad
	if p.ReviewCount != 4 || p.Rated != 3 || p.GoodCount != 2 || !approx(p.GoodReviewRate, 50) {
		t.Fatalf("counts: %+v", p)
	}
	if !approx(p.AvgRating, 4) {
		t.Fatalf("avg: %v", p.AvgRating)
	}
}

func TestExtractOrderingTieBreakAndTruncation(t *testing.T) {
	rs := mustRows(t, []string{"Product", "Rating", "Review"},
		[]string{"B", "5", "fast easy clear"},
		[]string{"A", "1", "slow and bad, it broke, poor"},
		[]string{"A", "2", "slow, broke"},
		[]string{"A", "1", ""},
		[]string{"B", "4", "easy durable compact love"},
		[]string{"B", "5", "Easy value"},
	)
	got := ExtractProductInsights(rs, "Product", "Rating", "Review", DefaultPositive(), DefaultNegative(), testOptions())
	if len(got) != 2 || got[0].Product != "B" || got[1].Product != "A" {
		t.Fatalf("products must keep first-appearance order: %+v", got)
	}
	b := got[0]
	if len(b.Pros) != 5 {
		t.Fatalf("pros should truncate to 5: %+v", b.Pros)
	}
	// easy (3) first, then count-1 hits in dictionary order: fast, love, value, compact
	want := []string{"easy", "fast", "love", "value", "compact"}
	for i, w := range want {
		if b.Pros[i].Keyword != w {
			t.Fatalf("pros[%d] = %s, want %s (%+v)", i, b.Pros[i].Keyword, w, b.Pros)
		}
	}
	a := got[1]
	// bad(1), poor(1), broke(2), slow(2): ties follow dictionary order, top 3
	wantCons := []string{"broke", "slow", "bad"}
	if len(a.Cons) != 3 {
		t.Fatalf("cons: %+v", a.Cons)
	}
	for i, w := range wantCons {
		if a.Cons[i].Keyword != w {
			t.Fatalf("cons[%d] = %s, want %s (%+v)", i, a.Cons[i].Keyword, w, a.Cons)
		}
	}
	if a.BadCount != 3 || a.GoodReviewRate != 0 {
		t.Fatalf("bad subset: %+v", a)
	}
}

func TestExtractWithoutReviewColumn(t *testing.T) {
	rs := mustRows(t, []string{"Product", "Rating"}, []string{"A", "5"}, []string{"", "1"})
	got := ExtractProductInsights(rs, "Product", "Rating", "", DefaultPositive(), DefaultNegative(), testOptions())
	if len(got) != 1 || got[0].GoodCount != 1 || len(got[0].Pros) != 0 {
		t.Fatalf("got %+v", got)
	}
	if ExtractProductInsights(rs, "", "Rating", "", nil, nil, testOptions()) != nil {
		t.Fatalf("missing product column should give nil")
	}
}

func TestParseDictionaries(t *testing.T) {
	d, err := ParseDictionaries([]byte("positive:\n  - term: \" Sturdy \"\n    description: built well\n  - term: cheap\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Positive) != 2 || d.Positive[0].Term != "Sturdy" || d.Positive[1].Description != "cheap" {
		t.Fatalf("positive: %+v", d.Positive)
	}
	if len(d.Negative) != len(DefaultNegative()) {
		t.Fatalf("omitted list should fall back to defaults")
	}
	if _, err := ParseDictionaries([]byte("negative:\n  - term: ''\n")); err == nil {
		t.Fatalf("expected empty-term error")
	}
	if _, err := ParseDictionaries([]byte("negative:\n  - term: Slow\n  - term: slow\n")); err == nil {
		t.Fatalf("expected duplicate-term error")
	}
}
