// Package table provides the record source and sink collaborators the
// pipeline runner streams through: CSV files and SQLite tables. Sources
// yield ordered records lazily and are one-shot; sinks truncate and write
// with a fixed line-terminator convention.
package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/burnish-io/burnish/record"
)

// Options select and shape a source or sink.
type Options struct {
	// Sheet names the table within multi-table containers (the SQLite
	// table name). Ignored by CSV.
	Sheet string
	// RawCells disables numeric/bool cell typing in sources that read
	// text (CSV); every cell stays a string.
	RawCells bool
}

// Source yields ordered records from one table. Finite and one-shot: Next
// returns io.EOF after the last record and the source cannot be rewound.
type Source interface {
	// Columns returns the table's column names in order, known as soon as
	// the source opens. Empty for a table with no header at all.
	Columns() []string
	// Next returns the next record or io.EOF.
	Next() (*record.Record, error)
	Close() error
}

// Sink persists a sequence of records to a destination, truncating or
// creating it. The header is supplied separately from the records so that
// a table with a header but no data rows keeps its shape; cells for
// columns outside the header are dropped.
type Sink interface {
	Write(header []string, recs []*record.Record) error
	Close() error
}

// OpenSource opens path as a record source, picking the format by
// extension: .csv/.tsv, or .db/.sqlite/.sqlite3.
func OpenSource(path string, opts Options) (Source, error) {
	switch ext := normalizeExt(path); ext {
	case ".csv", ".tsv":
		return openCSVSource(path, ext == ".tsv", opts)
	case ".db", ".sqlite", ".sqlite3":
		return openSQLiteSource(path, opts)
	default:
		return nil, fmt.Errorf("no record source for %q files", ext)
	}
}

// CreateSink opens path as a record sink, picking the format by extension.
func CreateSink(path string, opts Options) (Sink, error) {
	switch ext := normalizeExt(path); ext {
	case ".csv", ".tsv":
		return createCSVSink(path, ext == ".tsv")
	case ".db", ".sqlite", ".sqlite3":
		return createSQLiteSink(path, opts)
	default:
		return nil, fmt.Errorf("no record sink for %q files", ext)
	}
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
