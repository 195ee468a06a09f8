package analysis

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/reviewlens/internal/table"
	"golang.org/x/text/cases"
)

// KeywordHit counts rows whose review text mentions a keyword.
type KeywordHit struct {
	Keyword     string `json:"keyword"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// ProductInsight is the per-product summary: rating, volume and the keywords
// most mentioned in good (Pros) and bad (Cons) reviews.
type ProductInsight struct {
	Product     string  `json:"product"`
	AvgRating   float64 `json:"avg_rating"`
	Rated       int     `json:"rated"`
	ReviewCount int     `json:"review_count"`
	GoodCount   int     `json:"good_count"`
	BadCount    int     `json:"bad_count"`
	// GoodReviewRate is a percentage: GoodCount / ReviewCount * 100.
	GoodReviewRate float64      `json:"good_review_rate"`
	Pros           []KeywordHit `json:"pros"`
	Cons           []KeywordHit `json:"cons"`
}

// textIndex holds the case-folded review text of every row, built once per
// extraction so each keyword scan is a plain substring test.
type textIndex struct {
	text []string
	ok   []bool
}

func buildTextIndex(rows *table.RowSet, column string) textIndex {
	idx := textIndex{text: make([]string, rows.Len()), ok: make([]bool, rows.Len())}
	ci, found := rows.Lookup(column)
	if !found {
		return idx
	}
	c := cases.Fold()
	for i := 0; i < rows.Len(); i++ {
		v := rows.Row(i)[ci]
		if v.IsNull() {
			continue
		}
		idx.text[i] = c.String(v.String())
		idx.ok[i] = true
	}
	return idx
}

// ExtractProductInsights summarizes each distinct product, in order of first
// appearance. Rows rated at or above GoodRatingFloor form the good subset and
// rows at or below BadRatingCeiling the bad one; positive keywords are counted
// in good rows and negative keywords in bad rows, once per row. Rows with a
// missing product are skipped. Product and rating columns are required;
// without a review column the keyword lists stay empty.
func ExtractProductInsights(rows *table.RowSet, productColumn, ratingColumn, reviewColumn string, positive, negative []Keyword, opt Options) []ProductInsight {
	if rows == nil {
		return nil
	}
	pi, ok := rows.Lookup(productColumn)
	if !ok {
		return nil
	}
	ri, ok := rows.Lookup(ratingColumn)
	if !ok {
		return nil
	}
	texts := buildTextIndex(rows, reviewColumn)
	posTerms := foldTerms(positive)
	negTerms := foldTerms(negative)

	var order []string
	members := map[string][]int{}
	for i := 0; i < rows.Len(); i++ {
		v := rows.Row(i)[pi]
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if _, seen := members[k]; !seen {
			order = append(order, k)
		}
		members[k] = append(members[k], i)
	}

	out := make([]ProductInsight, 0, len(order))
	for _, product := range order {
		ins := ProductInsight{Product: product, ReviewCount: len(members[product])}
		var sum float64
		var good, bad []int
		for _, i := range members[product] {
			r, ok := rows.Row(i)[ri].Number()
			if !ok {
				continue
			}
			sum += r
			ins.Rated++
			if r >= opt.GoodRatingFloor {
				good = append(good, i)
			}
			if r <= opt.BadRatingCeiling {
				bad = append(bad, i)
			}
		}
		if ins.Rated > 0 {
			ins.AvgRating = sum / float64(ins.Rated)
		}
		ins.GoodCount, ins.BadCount = len(good), len(bad)
		if ins.ReviewCount > 0 {
			ins.GoodReviewRate = float64(ins.GoodCount) / float64(ins.ReviewCount) * 100
		}
		ins.Pros = countHits(texts, good, positive, posTerms, opt.TopPositive)
		ins.Cons = countHits(texts, bad, negative, negTerms, opt.TopNegative)
		out = append(out, ins)
	}
	return out
}

func foldTerms(dict []Keyword) []string {
	c := cases.Fold()
	out := make([]string, len(dict))
	for i, kw := range dict {
		out[i] = c.String(kw.Term)
	}
	return out
}

// countHits keeps keywords with at least one matching row, ordered by count
// desc with dictionary order breaking ties, truncated to limit.
func countHits(texts textIndex, subset []int, dict []Keyword, folded []string, limit int) []KeywordHit {
	var hits []KeywordHit
	for k, term := range folded {
		if term == "" {
			continue
		}
		n := 0
		for _, i := range subset {
			if texts.ok[i] && strings.Contains(texts.text[i], term) {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, KeywordHit{Keyword: dict[k].Term, Description: dict[k].Description, Count: n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Count > hits[j].Count })
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
