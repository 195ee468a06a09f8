// Package report serializes analysis results as a plain-text document, a
// JSON bundle and an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/chart"
)

// Meta describes the run a report belongs to.
type Meta struct {
	RunID     string           `json:"run_id,omitempty"`
	Input     string           `json:"input"`
	Generated time.Time        `json:"generated"`
	Charts    []chart.Artifact `json:"charts,omitempty"`
	// TopN bounds the ranking listings; 0 means 10.
	TopN int `json:"-"`
}

const rule = "--------------------------------------------------------------------------------"

// Text renders the report with fixed sections: summary, data overview,
// rating analysis, recommendations, appendix.
func Text(res *analysis.Result, meta Meta) string {
	var b strings.Builder
	_ = Write(&b, res, meta)
	return b.String()
}

// Write renders the text report to w.
func Write(w io.Writer, res *analysis.Result, meta Meta) error {
	if res == nil {
		return analysis.ErrNoRowSet
	}
	p := &printer{w: w}
	n := meta.TopN
	if n <= 0 {
		n = 10
	}
	banner := strings.Repeat("=", len(rule))
	p.line(banner)
	p.line("User Review Analysis Report")
	p.line(banner)
	p.f("\nGenerated: %s\n", meta.Generated.Format("2006-01-02 15:04:05"))
	p.f("Data file: %s\n", meta.Input)
	p.f("Records: %d\n", res.Overview.Rows)
	if meta.RunID != "" {
		p.f("Run: %s\n", meta.RunID)
	}

	p.section("1. Summary")
	if len(res.Insights) == 0 {
		p.line("  • No rating data available for a satisfaction summary")
	}
	for _, s := range res.Insights {
		p.f("  • %s\n", s)
	}

	p.section("2. Data overview")
	ov := res.Overview
	p.f("  • Total reviews: %d\n", ov.Rows)
	p.f("  • Columns: %s\n", strings.Join(ov.Columns, ", "))
	p.f("  • Completeness: %.2f%%\n", ov.Completeness*100)
	if ov.TimeStart != nil && ov.TimeEnd != nil {
		p.f("  • Time range: %s to %s\n", ov.TimeStart.Format("2006-01-02"), ov.TimeEnd.Format("2006-01-02"))
	} else {
		p.line("  • Time range: N/A")
	}
	p.f("  • Column roles: %s\n", roles(res.Roles))
	for _, note := range res.Notes {
		p.f("  • Unavailable: %s (%s)\n", note.Feature, note.Message)
	}

	p.section("3. Rating analysis")
	writeRating(p, res.Rating)
	writeTrends(p, res.Periods)
	writeDimension(p, "Product", res.ProductVolume, res.Products, n)
	writeDimension(p, "Region", res.RegionVolume, res.Regions, n)
	writeFindings(p, res.Findings)
	writeProducts(p, res.ProductInsights)

	p.section("4. Recommendations")
	for i, r := range res.Recommendations {
		p.f("\n  %d. [%s] %s\n", i+1, r.Tag, r.Headline)
		for _, a := range r.Actions {
			p.f("     - %s\n", a)
		}
	}

	p.section("5. Appendix")
	if len(meta.Charts) == 0 {
		p.line("  • No charts generated")
	}
	for _, c := range meta.Charts {
		p.f("  • %s: %s\n", c.Title, c.Path)
	}
	p.f("\n%s\n", banner)
	return p.err
}

func writeRating(p *printer, agg *analysis.RatingAggregate) {
	if agg == nil {
		p.line("\n  Rating statistics: unavailable")
		return
	}
	p.f("\n  Rating statistics (%s)\n", agg.Column)
	p.f("  • Rated reviews: %d\n", agg.Count)
	p.f("  • Average rating: %.2f stars\n", agg.Mean)
	p.f("  • Median rating: %.2f stars\n", agg.Median)
	p.f("  • Standard deviation: %s\n", fmtFloat(agg.Std))
	p.f("  • Range: %s to %s\n", num(agg.Min), num(agg.Max))
	p.line("  • Distribution:")
	for _, bkt := range agg.Distribution {
		p.f("      %s stars: %d (%.1f%%)\n", num(bkt.Rating), bkt.Count, pct(bkt.Count, agg.Count))
	}
}

func writeTrends(p *printer, periods []analysis.PeriodAggregate) {
	if len(periods) == 0 {
		return
	}
	p.line("\n  Monthly trends")
	for _, pa := range periods {
		if pa.Rated > 0 {
			p.f("      %s: %d reviews, average %.2f stars\n", pa.Period, pa.Count, pa.MeanRating)
		} else {
			p.f("      %s: %d reviews\n", pa.Period, pa.Count)
		}
	}
}

func writeDimension(p *printer, label string, volume []analysis.KeyCount, r *analysis.Ranking, n int) {
	if len(volume) == 0 && r.Len() == 0 {
		return
	}
	if len(volume) > 0 {
		p.f("\n  %s review volume TOP%d\n", label, n)
		for i, kc := range volume {
			if i == n {
				break
			}
			p.f("      %d. %s: %d (%.1f%%)\n", i+1, kc.Key, kc.Count, kc.Share*100)
		}
	}
	if r.Len() > 0 {
		p.f("\n  %s average rating TOP%d\n", label, n)
		for i, g := range r.Best(n) {
			p.f("      %d. %s: %.2f stars (%d ratings)\n", i+1, g.Key, g.Mean, g.Count)
		}
		p.f("\n  %s average rating BOTTOM%d\n", label, n)
		for i, g := range r.Worst(n) {
			p.f("      %d. %s: %.2f stars (%d ratings)\n", i+1, g.Key, g.Mean, g.Count)
		}
	}
}

func writeFindings(p *printer, findings []analysis.Finding) {
	p.f("\n  Anomalies (%d)\n", len(findings))
	if len(findings) == 0 {
		p.line("      none detected")
	}
	for i, f := range findings {
		p.f("      %d. %s\n", i+1, f.Message)
		for _, ex := range f.Examples {
			p.f("         repeated %dx: %s\n", ex.Count, clip(ex.Text, 50))
		}
	}
}

func writeProducts(p *printer, insights []analysis.ProductInsight) {
	if len(insights) == 0 {
		return
	}
	p.line("\n  Product strengths and weaknesses")
	for _, ins := range insights {
		p.f("\n    [%s]\n", ins.Product)
		p.f("      Average %.2f stars | %d reviews | good review rate %.1f%%\n", ins.AvgRating, ins.ReviewCount, ins.GoodReviewRate)
		writeHits(p, "Strengths", "no notable keywords", ins.Pros)
		writeHits(p, "Weaknesses", "no notable issues", ins.Cons)
	}
}

func writeHits(p *printer, title, empty string, hits []analysis.KeywordHit) {
	if len(hits) == 0 {
		p.f("      %s: %s\n", title, empty)
		return
	}
	p.f("      %s:\n", title)
	for i, h := range hits {
		p.f("        %d. %s (%d mentions - '%s')\n", i+1, h.Description, h.Count, h.Keyword)
	}
}

func roles(m analysis.RoleMap) string {
	parts := make([]string, 0, 5)
	for _, r := range []analysis.Role{analysis.RoleDate, analysis.RoleRating, analysis.RoleProduct, analysis.RoleRegion, analysis.RoleReviewText} {
		c, ok := m.Column(r)
		if !ok {
			c = "-"
		}
		parts = append(parts, fmt.Sprintf("%s=%s", r, c))
	}
	return strings.Join(parts, ", ")
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) f(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) { p.f("%s\n", s) }

func (p *printer) section(title string) {
	p.f("\n\n[%s]\n%s\n", title, rule)
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func clip(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
