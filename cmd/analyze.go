package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/chart"
	"github.com/KaramelBytes/reviewlens/internal/loader"
	"github.com/KaramelBytes/reviewlens/internal/report"
	"github.com/KaramelBytes/reviewlens/internal/run"
	"github.com/KaramelBytes/reviewlens/internal/table"
	"github.com/KaramelBytes/reviewlens/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// analyzeFlags holds the flags shared by analyze and analyze-batch.
type analyzeFlags struct {
	outputDir  string
	sheetName  string
	sheetIndex int
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	keywords   string
	noCharts   bool
	json       bool
	xlsx       bool
	asOf       string
	topN       int

	concentration float64
	burstGrowth   float64
	missingRate   float64
	goodFloor     float64
	badCeiling    float64
	polarization  float64
}

// settings is everything one run needs, resolved from config and flags.
type settings struct {
	load     loader.Options
	analysis analysis.Options
	charts   bool
	json     bool
	xlsx     bool
	topN     int
}

var (
	anaFlags  analyzeFlags
	anaStdout bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX review export and write a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		s, err := anaFlags.settings(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if anaStdout && anaFlags.outputDir == "" {
			return writeStdout(out, path, s)
		}
		dir := anaFlags.outputDir
		if dir == "" {
			dir, err = uniqueDir(cfg.OutputDir, runDirName(path))
			if err != nil {
				return err
			}
		}
		m, err := runAnalysis(path, dir, s)
		if err != nil {
			return err
		}
		printRun(out, m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaFlags.outputDir, "output-dir", "o", "", "directory for the report, charts and manifest (default: <output_dir>/<file>-<timestamp>)")
	analyzeCmd.Flags().BoolVar(&anaStdout, "stdout", false, "print the text report to stdout instead of writing a run directory")
}

// register adds the flags common to analyze and analyze-batch.
func (f *analyzeFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = config max_rows, unlimited by default)")
	fl.StringVar(&f.keywords, "keywords", "", "YAML file with positive/negative keyword dictionaries")
	fl.BoolVar(&f.noCharts, "no-charts", false, "skip PNG chart rendering")
	fl.BoolVar(&f.json, "json", false, "also write result.json (default from config json_export)")
	fl.BoolVar(&f.xlsx, "xlsx", false, "also write report.xlsx (default from config xlsx_export)")
	fl.StringVar(&f.asOf, "as-of", "", "analysis date (YYYY-MM-DD) used for the future-date check; default today")
	fl.IntVar(&f.topN, "top-n", 0, "groups listed per ranking (0 = config top_n)")
	fl.Float64Var(&f.concentration, "concentration", 0, "flag a rating value holding more than this share of ratings")
	fl.Float64Var(&f.burstGrowth, "burst-growth", 0, "flag month-over-month review growth above this ratio (2 = +200%)")
	fl.Float64Var(&f.missingRate, "missing-rate", 0, "flag columns whose null fraction is above this")
	fl.Float64Var(&f.goodFloor, "good-floor", 0, "ratings at or above this count as good")
	fl.Float64Var(&f.badCeiling, "bad-ceiling", 0, "ratings at or below this count as bad")
	fl.Float64Var(&f.polarization, "polarization", 0, "flag polarized ratings when 5s and 1s exceed this share")
}

// settings merges config values with flags. Thresholds from flags apply only
// when the flag was set explicitly.
func (f *analyzeFlags) settings(cmd *cobra.Command) (settings, error) {
	var s settings
	lo := loader.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex, MaxRows: cfg.MaxRows}
	if f.maxRows > 0 {
		lo.MaxRows = f.maxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		lo.Delimiter = ','
	case "\t", "tab":
		lo.Delimiter = '\t'
	case ";":
		lo.Delimiter = ';'
	default:
		return s, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	nf, err := numberFormat(f.decimal, f.thousands)
	if err != nil {
		return s, err
	}
	lo.Number = nf
	lo.Log = log().Component("loader")

	opt := analysis.DefaultOptions()
	opt.ConcentrationThreshold = cfg.ConcentrationThreshold
	opt.BurstGrowthThreshold = cfg.BurstGrowthThreshold
	opt.MissingRateThreshold = cfg.MissingRateThreshold
	opt.GoodRatingFloor = cfg.GoodRatingFloor
	opt.BadRatingCeiling = cfg.BadRatingCeiling
	opt.PolarizationThreshold = cfg.PolarizationThreshold
	fl := cmd.Flags()
	for name, dst := range map[string]*float64{
		"concentration": &opt.ConcentrationThreshold,
		"burst-growth":  &opt.BurstGrowthThreshold,
		"missing-rate":  &opt.MissingRateThreshold,
		"good-floor":    &opt.GoodRatingFloor,
		"bad-ceiling":   &opt.BadRatingCeiling,
		"polarization":  &opt.PolarizationThreshold,
	} {
		if fl.Changed(name) {
			v, err := fl.GetFloat64(name)
			if err != nil {
				return s, fmt.Errorf("--%s: %w", name, err)
			}
			*dst = v
		}
	}
	if opt.BadRatingCeiling >= opt.GoodRatingFloor {
		return s, fmt.Errorf("bad rating ceiling (%g) must be below good rating floor (%g)", opt.BadRatingCeiling, opt.GoodRatingFloor)
	}

	kw := f.keywords
	if kw == "" {
		kw = cfg.KeywordsFile
	}
	if kw != "" {
		d, err := analysis.LoadDictionaries(kw)
		if err != nil {
			return s, err
		}
		opt.Positive, opt.Negative = d.Positive, d.Negative
	}
	if f.asOf != "" {
		t, err := time.Parse("2006-01-02", f.asOf)
		if err != nil {
			return s, fmt.Errorf("invalid --as-of %q (use YYYY-MM-DD): %w", f.asOf, err)
		}
		// End of the given day, so reviews dated that day are not in the future.
		asOf := t.UTC().Add(24*time.Hour - time.Nanosecond)
		opt.Now = func() time.Time { return asOf }
	}
	opt.Log = log().Entry

	s.load = lo
	s.analysis = opt
	s.charts = cfg.Charts && !f.noCharts
	s.json = cfg.JSONExport || f.json
	s.xlsx = cfg.XLSXExport || f.xlsx
	s.topN = cfg.TopN
	if f.topN > 0 {
		s.topN = f.topN
	}
	return s, nil
}

func numberFormat(decimal, thousands string) (table.NumberFormat, error) {
	var nf table.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.Decimal = ','
	case ".", "dot":
		nf.Decimal = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(thousands) {
	case ",":
		nf.Thousands = ','
	case ".":
		nf.Thousands = '.'
	case "space", " ":
		nf.Thousands = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	return nf, nil
}

// writeStdout analyzes path and prints only the text report.
func writeStdout(w io.Writer, path string, s settings) error {
	rows, err := loader.Load(path, s.load)
	if err != nil {
		return err
	}
	res, err := analysis.Run(rows, s.analysis)
	if err != nil {
		return err
	}
	return report.Write(w, res, report.Meta{Input: path, Generated: time.Now(), TopN: s.topN})
}

// runAnalysis loads path, analyzes it and writes every artifact plus
// manifest.json into dir. Chart failures become manifest warnings.
func runAnalysis(path, dir string, s settings) (*run.Manifest, error) {
	l := log().WithField("input", path)
	rows, err := loader.Load(path, s.load)
	if err != nil {
		return nil, err
	}
	res, err := analysis.Run(rows, s.analysis)
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	m := run.New(path, dir)
	m.Rows = res.Overview.Rows
	m.Findings = len(res.Findings)
	meta := report.Meta{RunID: m.ID, Input: path, Generated: m.StartedAt.Local(), TopN: s.topN}

	if s.charts {
		copt := chart.DefaultOptions(filepath.Join(dir, "charts"))
		copt.TopN = s.topN
		copt.Log = l
		arts, errs := chart.RenderAll(res, copt)
		for _, a := range arts {
			m.Add("chart", a.Path)
		}
		for _, e := range errs {
			m.Warn("chart " + e.Error())
		}
		meta.Charts = arts
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, res, meta); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	reportPath := filepath.Join(dir, "report.txt")
	if err := utils.SafeWriteFile(reportPath, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	m.Add("report", reportPath)

	if s.json {
		buf.Reset()
		if err := report.WriteJSON(&buf, res, meta); err != nil {
			return nil, fmt.Errorf("render json: %w", err)
		}
		jsonPath := filepath.Join(dir, "result.json")
		if err := utils.SafeWriteFile(jsonPath, buf.Bytes()); err != nil {
			return nil, fmt.Errorf("write json: %w", err)
		}
		m.Add("json", jsonPath)
	}
	if s.xlsx {
		xlsxPath := filepath.Join(dir, "report.xlsx")
		if err := report.WriteWorkbook(xlsxPath, res, meta); err != nil {
			return nil, err
		}
		m.Add("xlsx", xlsxPath)
	}
	if err := m.Save(); err != nil {
		return nil, err
	}
	l.WithFields(logrus.Fields{"dir": dir, "rows": m.Rows, "findings": m.Findings}).Info("analysis written")
	return m, nil
}

func printRun(w io.Writer, m *run.Manifest) {
	fmt.Fprintf(w, "✓ Analyzed %s (%d rows, %d findings)\n", m.Input, m.Rows, m.Findings)
	fmt.Fprintf(w, "✓ Wrote run %s to %s\n", m.ID, m.Dir())
	for _, wmsg := range m.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", wmsg)
	}
}

// runDirName is <file stem>-<timestamp>.
func runDirName(path string) string {
	return utils.SafeName(path) + "-" + time.Now().Format("20060102-150405")
}

// uniqueDir returns root/name, or root/name__N for the first N >= 2 that does
// not exist yet.
func uniqueDir(root, name string) (string, error) {
	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return dir, nil
	} else if err != nil {
		return "", err
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(root, fmt.Sprintf("%s__%d", name, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, nil
		}
	}
}
