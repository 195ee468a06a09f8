package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/KaramelBytes/reviewlens/internal/table"
)

// ErrNoRowSet is returned when analysis is asked to run without data.
var ErrNoRowSet = errors.New("analysis: no row set")

// FindingKind tags an anomaly rule.
type FindingKind int

const (
	RatingConcentration FindingKind = iota + 1
	DuplicateReviews
	FutureDate
	BurstGrowth
	HighMissingRate
)

func (k FindingKind) String() string {
	switch k {
	case RatingConcentration:
		return "rating_concentration"
	case DuplicateReviews:
		return "duplicate_reviews"
	case FutureDate:
		return "future_date"
	case BurstGrowth:
		return "burst_growth"
	case HighMissingRate:
		return "high_missing_rate"
	default:
		return "unknown"
	}
}

func (k FindingKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Finding is one anomaly plus the evidence that triggered it. Which evidence
// fields are set depends on Kind.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Message string      `json:"message"`
	Column  string      `json:"column,omitempty"`
	// Value is the dominant rating for RatingConcentration.
	Value string `json:"value,omitempty"`
	Count int    `json:"count,omitempty"`
	// Rate is a fraction (0.8 == 80%) or, for BurstGrowth, the growth ratio.
	Rate     float64   `json:"rate"`
	Period   string    `json:"period,omitempty"`
	Examples []Example `json:"examples,omitempty"`
}

// Example is a repeated review text and how often it occurs.
type Example struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// DetectAnomalies runs the rules in fixed order: rating concentration,
// duplicate reviews, future dates, burst growth, high missing rate. A rule
// whose role is unresolved is skipped. periods may be nil, in which case they
// are computed from the date role.
func DetectAnomalies(rows *table.RowSet, roles RoleMap, periods []PeriodAggregate, opt Options) ([]Finding, error) {
	if rows == nil {
		return nil, ErrNoRowSet
	}
	log := opt.logger()
	var out []Finding

	if roles.Rating != "" {
		if agg, ok := AggregateRating(rows, roles.Rating); ok {
			if f, hit := concentration(agg, opt.ConcentrationThreshold); hit {
				out = append(out, f)
			}
		}
	} else {
		log.Debug("rating role unresolved, concentration rule skipped")
	}

	if roles.ReviewText != "" {
		if f, hit := duplicates(rows, roles.ReviewText, opt.DuplicateExamples); hit {
			out = append(out, f)
		}
	}

	if roles.Date != "" {
		if f, hit := futureDates(rows, roles.Date, opt); hit {
			out = append(out, f)
		}
		if periods == nil {
			periods = AggregateByPeriod(rows, roles.Date, roles.Rating)
		}
		out = append(out, bursts(periods, opt.BurstGrowthThreshold)...)
	} else {
		log.Debug("date role unresolved, future-date and burst rules skipped")
	}

	out = append(out, missingRates(rows, opt.MissingRateThreshold)...)
	log.WithField("findings", len(out)).Debug("anomaly rules evaluated")
	return out, nil
}

func concentration(agg *RatingAggregate, threshold float64) (Finding, bool) {
	top, ok := agg.Dominant()
	if !ok {
		return Finding{}, false
	}
	share := float64(top.Count) / float64(agg.Count)
	if share <= threshold {
		return Finding{}, false
	}
	value := strconv.FormatFloat(top.Rating, 'f', -1, 64)
	return Finding{
		Kind:    RatingConcentration,
		Message: fmt.Sprintf("Ratings are unusually concentrated: %s stars make up %.1f%% of ratings", value, share*100),
		Column:  agg.Column,
		Value:   value,
		Count:   top.Count,
		Rate:    share,
	}, true
}

// duplicates counts repeats the way a first-occurrence-kept dedupe would drop
// them: every occurrence after the first. Nulls compare equal to each other,
// so a second missing text is a duplicate, but they never appear as examples.
func duplicates(rows *table.RowSet, column string, maxExamples int) (Finding, bool) {
	vals, ok := rows.Column(column)
	if !ok || rows.Len() == 0 {
		return Finding{}, false
	}
	counts := map[string]int{}
	var order []string
	dup, nulls := 0, 0
	for _, v := range vals {
		if v.IsNull() {
			if nulls > 0 {
				dup++
			}
			nulls++
			continue
		}
		k := v.Key()
		if counts[k] == 0 {
			order = append(order, k)
		} else {
			dup++
		}
		counts[k]++
	}
	if dup == 0 {
		return Finding{}, false
	}
	var examples []Example
	for _, k := range order {
		if counts[k] > 1 {
			examples = append(examples, Example{Text: k, Count: counts[k]})
		}
	}
	sort.SliceStable(examples, func(i, j int) bool { return examples[i].Count > examples[j].Count })
	if maxExamples >= 0 && len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	rate := float64(dup) / float64(rows.Len())
	return Finding{
		Kind:     DuplicateReviews,
		Message:  fmt.Sprintf("Found %d duplicate reviews (%.1f%%)", dup, rate*100),
		Column:   column,
		Count:    dup,
		Rate:     rate,
		Examples: examples,
	}, true
}

func futureDates(rows *table.RowSet, column string, opt Options) (Finding, bool) {
	idx, ok := rows.Lookup(column)
	if !ok {
		return Finding{}, false
	}
	now := opt.now()
	n := 0
	for i := 0; i < rows.Len(); i++ {
		if t, ok := rows.Row(i)[idx].Timestamp(); ok && t.After(now) {
			n++
		}
	}
	if n == 0 {
		return Finding{}, false
	}
	return Finding{
		Kind:    FutureDate,
		Message: fmt.Sprintf("Found %d reviews dated in the future", n),
		Column:  column,
		Count:   n,
		Rate:    float64(n) / float64(rows.Len()),
	}, true
}

// bursts compares each observed month with the previous observed month.
func bursts(periods []PeriodAggregate, threshold float64) []Finding {
	var out []Finding
	for i := 1; i < len(periods); i++ {
		prev, cur := periods[i-1], periods[i]
		if prev.Count == 0 {
			continue
		}
		growth := float64(cur.Count-prev.Count) / float64(prev.Count)
		if growth <= threshold {
			continue
		}
		out = append(out, Finding{
			Kind:    BurstGrowth,
			Message: fmt.Sprintf("Review volume spiked: %s grew %.0f%%", cur.Period, growth*100),
			Count:   cur.Count,
			Rate:    growth,
			Period:  cur.Period.String(),
		})
	}
	return out
}

func missingRates(rows *table.RowSet, threshold float64) []Finding {
	if rows.Len() == 0 {
		return nil
	}
	var out []Finding
	for _, col := range rows.Columns() {
		n := rows.NullCount(col)
		rate := float64(n) / float64(rows.Len())
		if rate <= threshold {
			continue
		}
		out = append(out, Finding{
			Kind:    HighMissingRate,
			Message: fmt.Sprintf("Column '%s' has a high missing rate: %.1f%%", col, rate*100),
			Column:  col,
			Count:   n,
			Rate:    rate,
		})
	}
	return out
}
