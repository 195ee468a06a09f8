package analysis

import "fmt"

// SynthesizeInsights turns the rating summary and findings into short
// judgments: satisfaction first, then polarization, then the anomaly count.
// A nil aggregate yields no satisfaction line.
func SynthesizeInsights(agg *RatingAggregate, findings []Finding, opt Options) []string {
	var out []string
	if agg != nil && agg.Count > 0 {
		out = append(out, satisfaction(agg.Mean))
		five, one := agg.CountOf(5), agg.CountOf(1)
		if five > 0 && one > 0 {
			share := float64(five+one) / float64(agg.Count)
			if share > opt.PolarizationThreshold {
				out = append(out, fmt.Sprintf("Ratings are polarized: 5 and 1 stars together make up %.1f%%; dig into the causes of both the praise and the complaints", share*100))
			}
		}
	}
	if len(findings) > 0 {
		out = append(out, fmt.Sprintf("Found %d anomalies that need further investigation", len(findings)))
	}
	return out
}

func satisfaction(mean float64) string {
	switch {
	case mean >= 4.5:
		return fmt.Sprintf("Very high overall satisfaction: average rating %.2f stars", mean)
	case mean >= 4.0:
		return fmt.Sprintf("Good overall satisfaction with room to improve: average rating %.2f stars", mean)
	case mean >= 3.0:
		return fmt.Sprintf("Moderate overall satisfaction that needs attention: average rating only %.2f stars", mean)
	default:
		return fmt.Sprintf("Low overall satisfaction, urgent improvement needed: average rating %.2f stars", mean)
	}
}
