package analysis

import "fmt"

// Recommendation is an action item for the report.
type Recommendation struct {
	Tag      string   `json:"tag"`
	Headline string   `json:"headline"`
	Actions  []string `json:"actions"`
}

// Recommend derives action items from the rating shares and findings. The
// continuous-improvement item is always last.
func Recommend(agg *RatingAggregate, findings []Finding, opt Options) []Recommendation {
	var out []Recommendation
	if agg != nil && agg.Count > 0 {
		if low := agg.ShareAtMost(opt.BadRatingCeiling); low > opt.LowShareAlert {
			out = append(out, Recommendation{
				Tag:      "urgent",
				Headline: fmt.Sprintf("Low ratings make up %.1f%% of reviews", low*100),
				Actions: []string{
					"Set up alerts for new negative reviews",
					"Categorize low-rated reviews by root cause",
					"Fix the most frequent complaints first",
				},
			})
		}
		if high := agg.ShareAtLeast(opt.GoodRatingFloor); high > opt.HighShareAlert {
			out = append(out, Recommendation{
				Tag:      "strength",
				Headline: fmt.Sprintf("Positive rating share is %.1f%%", high*100),
				Actions: []string{
					"Summarize what high-rated reviews have in common",
					"Promote the praised features as selling points",
					"Encourage satisfied customers to share and recommend",
				},
			})
		}
	}
	if len(findings) > 0 {
		out = append(out, Recommendation{
			Tag:      "data-quality",
			Headline: "Anomalies were found in the data",
			Actions: []string{
				"Review the data collection process",
				"Monitor data quality on every import",
				"Clean and standardize historical records",
			},
		})
	}
	out = append(out, Recommendation{
		Tag:      "continuous-improvement",
		Headline: "General recommendations",
		Actions: []string{
			"Run review analysis on a weekly or monthly cadence",
			"Track Net Promoter Score over time",
			"Interview customers to understand pain points",
			"Maintain a prioritized product improvement backlog",
		},
	})
	return out
}
