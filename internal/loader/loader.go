package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/reviewlens/internal/logging"
	"github.com/KaramelBytes/reviewlens/internal/table"
	"github.com/sirupsen/logrus"
)

// ErrUnsupported indicates a file format no registered loader accepts.
var ErrUnsupported = errors.New("unsupported input format")

// ErrNoHeader indicates the source has no header row to name columns.
var ErrNoHeader = errors.New("no header row")

// LoadError reports an unreadable or malformed source. It is fatal for a run.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Options controls how sources are read.
type Options struct {
	// Delimiter for CSV. If 0, sniffed from the extension and the header line.
	Delimiter rune
	// SheetName selects an XLSX sheet; SheetIndex (1-based) is used when empty.
	SheetName  string
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Number pins numeric separators; zero values auto-detect per cell.
	Number table.NumberFormat
	Log    logrus.FieldLogger
}

// Loader reads one family of tabular files into a RowSet.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*table.RowSet, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load picks a loader by filename and reads the whole source. Every failure is
// returned as a *LoadError.
func Load(path string, opt Options) (*table.RowSet, error) {
	log := logging.OrDiscard(opt.Log).WithField("path", path)
	for _, l := range registry {
		if !l.CanLoad(path) {
			continue
		}
		rs, err := l.Load(path, opt)
		if err != nil {
			log.WithField("error", err.Error()).Error("load failed")
			return nil, &LoadError{Path: path, Err: err}
		}
		log.WithFields(logrus.Fields{"rows": rs.Len(), "columns": len(rs.Columns())}).Info("dataset loaded")
		return rs, nil
	}
	return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))}
}

// Supported reports whether any registered loader accepts the filename.
func Supported(path string) bool {
	for _, l := range registry {
		if l.CanLoad(path) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// buildRowSet turns a header plus raw string records into a RowSet. Blank
// header cells become "Unnamed: i" and repeated names get ".1", ".2" suffixes
// so column names stay unique.
func buildRowSet(name string, header []string, records [][]string, opt Options, log logrus.FieldLogger) (*table.RowSet, error) {
	cols := uniqueHeader(header)
	rs, err := table.New(name, cols)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if opt.MaxRows > 0 && rs.Len() >= opt.MaxRows {
			log.WithFields(logrus.Fields{"max_rows": opt.MaxRows, "total": len(records)}).Warn("row limit reached, remaining rows ignored")
			break
		}
		if len(rec) == 0 {
			continue
		}
		if len(rec) > len(cols) {
			for _, extra := range rec[len(cols):] {
				if strings.TrimSpace(extra) != "" {
					return nil, fmt.Errorf("row %d: %d cells for %d columns", i+2, len(rec), len(cols))
				}
			}
			rec = rec[:len(cols)]
		}
		vals := make([]table.Value, len(rec))
		for j, cell := range rec {
			vals[j] = table.ParseCell(cell, opt.Number)
		}
		if err := rs.Append(vals); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return rs, nil
}

func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base := name
			k := seen[base]
			for {
				k++
				cand := fmt.Sprintf("%s.%d", base, k)
				if _, taken := seen[cand]; !taken {
					seen[base] = k
					name = cand
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}
