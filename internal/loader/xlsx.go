package loader

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/logging"
	"github.com/KaramelBytes/reviewlens/internal/table"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Load reads the selected sheet. The first row is the header.
func (xlsxLoader) Load(path string, opt Options) (*table.RowSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt.SheetName, opt.SheetIndex, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrNoHeader
	}
	log := logging.OrDiscard(opt.Log).WithFields(logrus.Fields{"loader": "xlsx", "sheet": sheet})
	n, err := normalizeDates(f, sheet, rows)
	if err != nil {
		return nil, fmt.Errorf("read dates: %w", err)
	}
	log.WithFields(logrus.Fields{"rows": len(rows) - 1, "date_cells": n}).Debug("sheet read")
	name := filepath.Base(path)
	if opt.SheetName != "" {
		name = fmt.Sprintf("%s (sheet: %s)", name, sheet)
	}
	return buildRowSet(name, rows[0], rows[1:], opt, log)
}

// pickSheet resolves a sheet by case-insensitive name, falling back to a
// 1-based index (default 1).
func pickSheet(sheets []string, name string, index int, file string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", file)
	}
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			name, file, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range: workbook '%s' has %d sheet(s)", index, file, len(sheets))
	}
	return sheets[index-1], nil
}

// normalizeDates replaces the display text of date-styled numeric cells with
// RFC 3339 timestamps. GetRows renders dates with the cell's number format
// ("1/15/24 09:30"), which is locale dependent; the stored serial is not.
func normalizeDates(f *excelize.File, sheet string, rows [][]string) (int, error) {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	isDate := map[int]bool{}
	n := 0
	for r := 1; r < len(rows); r++ {
		for c, display := range rows[r] {
			if strings.TrimSpace(display) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return n, err
			}
			style, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return n, err
			}
			date, seen := isDate[style]
			if !seen {
				date = dateStyle(f, style)
				isDate[style] = date
			}
			if !date {
				continue
			}
			raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				return n, err
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				// text typed into a date-formatted cell
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rows[r][c] = t.UTC().Format(time.RFC3339)
			n++
		}
	}
	return n, nil
}

// dateStyle reports whether the style's number format shows a calendar date.
// Built-in ids 14-17 and 22 are the date and date-time formats; custom
// formats count when they contain a year or day token.
func dateStyle(f *excelize.File, idx int) bool {
	st, err := f.GetStyle(idx)
	if err != nil || st == nil {
		return false
	}
	if st.CustomNumFmt != nil {
		return dateFormatCode(*st.CustomNumFmt)
	}
	return (st.NumFmt >= 14 && st.NumFmt <= 17) || st.NumFmt == 22
}

func dateFormatCode(code string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "yd")
}
