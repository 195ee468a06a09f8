package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/utils"
	"github.com/xuri/excelize/v2"
)

// Bundle is the JSON export: run metadata plus the full result.
type Bundle struct {
	Meta   Meta             `json:"meta"`
	Result *analysis.Result `json:"result"`
}

// WriteJSON writes the bundle as indented JSON.
func WriteJSON(w io.Writer, res *analysis.Result, meta Meta) error {
	b, err := utils.PrettyJSON(Bundle{Meta: meta, Result: res})
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// WriteWorkbook saves the aggregates to an XLSX file, one sheet per table.
// Sheets without data are omitted except Summary.
func WriteWorkbook(path string, res *analysis.Result, meta Meta) error {
	if res == nil {
		return analysis.ErrNoRowSet
	}
	f := excelize.NewFile()
	defer f.Close()

	summary := [][]any{
		{"Data file", meta.Input},
		{"Generated", meta.Generated.Format("2006-01-02 15:04:05")},
		{"Records", res.Overview.Rows},
		{"Completeness (%)", res.Overview.Completeness * 100},
	}
	if res.Rating != nil {
		summary = append(summary,
			[]any{"Rated reviews", res.Rating.Count},
			[]any{"Average rating", res.Rating.Mean},
			[]any{"Median rating", res.Rating.Median},
			[]any{"Standard deviation", fmtFloat(res.Rating.Std)},
		)
	}
	for _, s := range res.Insights {
		summary = append(summary, []any{"Insight", s})
	}
	if err := fillSheet(f, "Summary", []any{"Field", "Value"}, summary); err != nil {
		return err
	}

	if res.Rating != nil {
		var rows [][]any
		for _, b := range res.Rating.Distribution {
			rows = append(rows, []any{b.Rating, b.Count, pct(b.Count, res.Rating.Count)})
		}
		if err := fillSheet(f, "Distribution", []any{"Rating", "Count", "Share (%)"}, rows); err != nil {
			return err
		}
	}
	if len(res.Periods) > 0 {
		var rows [][]any
		for _, p := range res.Periods {
			var mean any
			if p.Rated > 0 {
				mean = p.MeanRating
			}
			rows = append(rows, []any{p.Period.String(), p.Count, p.Rated, mean})
		}
		if err := fillSheet(f, "Trends", []any{"Month", "Reviews", "Rated", "Average rating"}, rows); err != nil {
			return err
		}
	}
	for _, dim := range []struct {
		sheet string
		r     *analysis.Ranking
	}{{"Products", res.Products}, {"Regions", res.Regions}} {
		if dim.r.Len() == 0 {
			continue
		}
		var rows [][]any
		for i, g := range dim.r.Groups {
			rows = append(rows, []any{i + 1, g.Key, g.Mean, g.Count})
		}
		if err := fillSheet(f, dim.sheet, []any{"Rank", dim.r.Column, "Average rating", "Ratings"}, rows); err != nil {
			return err
		}
	}
	if len(res.Findings) > 0 {
		var rows [][]any
		for _, fd := range res.Findings {
			rows = append(rows, []any{fd.Kind.String(), fd.Message, fd.Column, fd.Period, fd.Count, fd.Rate})
		}
		if err := fillSheet(f, "Anomalies", []any{"Kind", "Message", "Column", "Period", "Count", "Rate"}, rows); err != nil {
			return err
		}
	}
	if len(res.ProductInsights) > 0 {
		var rows [][]any
		for _, p := range res.ProductInsights {
			rows = append(rows, []any{p.Product, p.AvgRating, p.ReviewCount, p.GoodReviewRate, hitList(p.Pros), hitList(p.Cons)})
		}
		if err := fillSheet(f, "Keywords", []any{"Product", "Average rating", "Reviews", "Good rate (%)", "Strengths", "Weaknesses"}, rows); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// fillSheet writes a header row and data rows. The default sheet is renamed
// for the first call.
func fillSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if idx, _ := f.GetSheetIndex("Sheet1"); idx >= 0 {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

func hitList(hits []analysis.KeywordHit) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = fmt.Sprintf("%s (%d)", h.Keyword, h.Count)
	}
	return strings.Join(parts, ", ")
}
