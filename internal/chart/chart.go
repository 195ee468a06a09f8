// Package chart renders analysis aggregates as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/logging"
	"github.com/KaramelBytes/reviewlens/internal/utils"
	"github.com/sirupsen/logrus"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData means there is nothing to plot for a chart.
var ErrNoData = errors.New("no data to plot")

// Artifact is a chart written to disk.
type Artifact struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Options controls chart size and how many groups ranking charts show.
type Options struct {
	Dir    string
	Width  int
	Height int
	TopN   int
	Log    logrus.FieldLogger
}

func DefaultOptions(dir string) Options {
	return Options{Dir: dir, Width: 1200, Height: 600, TopN: 10}
}

// RenderAll draws every chart the result has data for. A chart that fails is
// reported in errs and does not stop the others.
func RenderAll(res *analysis.Result, opt Options) (arts []Artifact, errs []error) {
	log := logging.OrDiscard(opt.Log).WithField("component", "chart")
	if res == nil {
		return nil, []error{ErrNoData}
	}
	if err := utils.EnsureDir(opt.Dir); err != nil {
		return nil, []error{fmt.Errorf("chart dir: %w", err)}
	}
	type job struct {
		name, title string
		skip        bool
		draw        func(path string) error
	}
	jobs := []job{
		{"rating_distribution", "Rating distribution", res.Rating == nil,
			func(p string) error { return RatingDistribution(res.Rating, p, opt) }},
		{"monthly_trends", "Monthly review volume and average rating", len(res.Periods) == 0,
			func(p string) error { return Trends(res.Periods, p, opt) }},
		{"product_ranking", "Top products by average rating", res.Products.Len() == 0,
			func(p string) error { return Ranking(res.Products, "Top products by average rating", p, opt) }},
		{"region_ranking", "Top regions by average rating", res.Regions.Len() == 0,
			func(p string) error { return Ranking(res.Regions, "Top regions by average rating", p, opt) }},
		{"product_good_rate", "Good review rate by product", len(res.ProductInsights) == 0,
			func(p string) error { return GoodRates(res.ProductInsights, p, opt) }},
	}
	for _, j := range jobs {
		if j.skip {
			log.WithField("chart", j.name).Debug("no data, chart skipped")
			continue
		}
		path := filepath.Join(opt.Dir, j.name+".png")
		if err := j.draw(path); err != nil {
			log.WithFields(logrus.Fields{"chart": j.name, "error": err.Error()}).Warn("chart failed")
			errs = append(errs, fmt.Errorf("%s: %w", j.name, err))
			continue
		}
		log.WithField("path", path).Info("chart written")
		arts = append(arts, Artifact{Name: j.name, Title: j.title, Path: path})
	}
	return arts, errs
}

// RatingDistribution draws one bar per rating value, lowest rating first.
func RatingDistribution(agg *analysis.RatingAggregate, path string, opt Options) error {
	if agg == nil || len(agg.Distribution) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, 0, len(agg.Distribution))
	for i := len(agg.Distribution) - 1; i >= 0; i-- {
		b := agg.Distribution[i]
		bars = append(bars, gochart.Value{
			Label: fmt.Sprintf("%s stars (%.1f%%)", formatRating(b.Rating), float64(b.Count)/float64(agg.Count)*100),
			Value: float64(b.Count),
		})
	}
	return renderBars("Rating distribution", "Reviews", bars, path, opt)
}

// Ranking draws the best TopN groups of r.
func Ranking(r *analysis.Ranking, title, path string, opt Options) error {
	groups := r.Best(topN(opt))
	if len(groups) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, len(groups))
	for i, g := range groups {
		bars[i] = gochart.Value{Label: fmt.Sprintf("%s (n=%d)", g.Key, g.Count), Value: g.Mean}
	}
	return renderBars(title, "Average rating", bars, path, opt)
}

// GoodRates draws the good review rate of up to TopN products in input order.
func GoodRates(insights []analysis.ProductInsight, path string, opt Options) error {
	if len(insights) == 0 {
		return ErrNoData
	}
	n := topN(opt)
	if len(insights) < n {
		n = len(insights)
	}
	bars := make([]gochart.Value, n)
	for i, p := range insights[:n] {
		bars[i] = gochart.Value{Label: fmt.Sprintf("%s (%.1f%%)", p.Product, p.GoodReviewRate), Value: p.GoodReviewRate}
	}
	return renderBars("Good review rate by product", "Good reviews (%)", bars, path, opt)
}

// Trends plots monthly volume on the left axis and the mean rating on the
// right axis. Months without ratings are left out of the rating line.
func Trends(periods []analysis.PeriodAggregate, path string, opt Options) error {
	if len(periods) == 0 {
		return ErrNoData
	}
	xs := make([]float64, len(periods))
	counts := make([]float64, len(periods))
	ticks := make([]gochart.Tick, len(periods))
	var rx, ry []float64
	maxCount := 0.0
	for i, p := range periods {
		xs[i] = float64(i)
		counts[i] = float64(p.Count)
		maxCount = math.Max(maxCount, counts[i])
		ticks[i] = gochart.Tick{Value: float64(i), Label: p.Period.String()}
		if p.Rated > 0 {
			rx = append(rx, float64(i))
			ry = append(ry, p.MeanRating)
		}
	}
	series := []gochart.Series{
		gochart.ContinuousSeries{Name: "Reviews", XValues: xs, YValues: counts},
	}
	if len(rx) > 0 {
		series = append(series, gochart.ContinuousSeries{
			Name: "Average rating", YAxis: gochart.YAxisSecondary, XValues: rx, YValues: ry,
		})
	}
	graph := gochart.Chart{
		Title:  "Monthly review volume and average rating",
		Width:  width(opt),
		Height: height(opt),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  "Month",
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(periods)) - 0.5},
		},
		YAxis: gochart.YAxis{
			Name:  "Reviews",
			Range: &gochart.ContinuousRange{Min: 0, Max: headroom(maxCount)},
		},
		YAxisSecondary: gochart.YAxis{
			Name:  "Average rating",
			Range: &gochart.ContinuousRange{Min: 0, Max: 5.5},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func renderBars(title, yName string, bars []gochart.Value, path string, opt Options) error {
	maxVal := 0.0
	for _, b := range bars {
		maxVal = math.Max(maxVal, b.Value)
	}
	const barWidth, spacing = 60, 30
	w := width(opt)
	if need := len(bars)*(barWidth+spacing) + 200; need > w {
		w = need
	}
	graph := gochart.BarChart{
		Title:      title,
		Width:      w,
		Height:     height(opt),
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Bottom: 20},
		},
		XAxis: gochart.Style{TextRotationDegrees: 30},
		YAxis: gochart.YAxis{
			Name:  yName,
			Range: &gochart.ContinuousRange{Min: 0, Max: headroom(maxVal)},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func headroom(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.15
}

func topN(opt Options) int {
	if opt.TopN <= 0 {
		return 10
	}
	return opt.TopN
}

func width(opt Options) int {
	if opt.Width <= 0 {
		return 1200
	}
	return opt.Width
}

func height(opt Options) int {
	if opt.Height <= 0 {
		return 600
	}
	return opt.Height
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
