package analysis

import (
	"time"

	"github.com/KaramelBytes/reviewlens/internal/logging"
	"github.com/sirupsen/logrus"
)

// Options controls thresholds and collaborators of an analysis pass.
// Start from DefaultOptions(): the zero value has a good-rating floor of 0,
// which counts every rating as good, and keeps no pros or cons.
type Options struct {
	// ConcentrationThreshold flags a single rating value whose share of
	// non-null ratings is strictly above it.
	ConcentrationThreshold float64
	// BurstGrowthThreshold flags a month whose review count grew by more than
	// this ratio over the previous observed month (2.0 == +200%).
	BurstGrowthThreshold float64
	// MissingRateThreshold flags any column whose null fraction is above it.
	MissingRateThreshold float64
	// GoodRatingFloor and BadRatingCeiling split rated rows into the good and
	// bad subsets used by keyword extraction and the rating shares.
	GoodRatingFloor  float64
	BadRatingCeiling float64
	// PolarizationThreshold applies to the combined share of the 5 and 1 buckets.
	PolarizationThreshold float64
	TopPositive           int
	TopNegative           int
	// LowShareAlert and HighShareAlert drive the urgent and strength recommendations.
	LowShareAlert  float64
	HighShareAlert float64
	// DuplicateExamples caps the repeated texts attached to a duplicate finding.
	DuplicateExamples int

	// Positive and Negative are the keyword dictionaries. Nil means the defaults.
	Positive []Keyword
	Negative []Keyword

	// Now returns the analysis instant used for future-date checks. Nil means time.Now.
	Now func() time.Time
	Log logrus.FieldLogger
}

// DefaultOptions returns the documented thresholds.
func DefaultOptions() Options {
	return Options{
		ConcentrationThreshold: 0.70,
		BurstGrowthThreshold:   2.0,
		MissingRateThreshold:   0.30,
		GoodRatingFloor:        4,
		BadRatingCeiling:       2,
		PolarizationThreshold:  0.60,
		TopPositive:            5,
		TopNegative:            3,
		LowShareAlert:          0.20,
		HighShareAlert:         0.60,
		DuplicateExamples:      5,
	}
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now()
}

func (o Options) logger() logrus.FieldLogger {
	return logging.OrDiscard(o.Log).WithField("component", "analysis")
}

func (o Options) dictionaries() (pos, neg []Keyword) {
	pos, neg = o.Positive, o.Negative
	if pos == nil {
		pos = DefaultPositive()
	}
	if neg == nil {
		neg = DefaultNegative()
	}
	return pos, neg
}
