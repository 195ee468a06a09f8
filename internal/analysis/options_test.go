package analysis

import "testing"

func TestDefaultOptionsSplitGoodAndBad(t *testing.T) {
	opt := DefaultOptions()
	if opt.GoodRatingFloor != 4 || opt.BadRatingCeiling != 2 || opt.TopPositive != 5 || opt.TopNegative != 3 {
		t.Fatalf("defaults: %+v", opt)
	}
	rs := mustRows(t, []string{"Product", "Rating", "Review"},
		[]string{"Phone", "1", "bad and slow"},
		[]string{"Phone", "5", "great quality"},
	)
	got := ExtractProductInsights(rs, "Product", "Rating", "Review", DefaultPositive(), DefaultNegative(), opt)
	if len(got) != 1 || got[0].GoodCount != 1 || got[0].BadCount != 1 {
		t.Fatalf("a 1-star review must not count as good: %+v", got)
	}
	if len(got[0].Pros) == 0 || len(got[0].Cons) == 0 {
		t.Fatalf("defaults should keep pros and cons: %+v", got[0])
	}
}
