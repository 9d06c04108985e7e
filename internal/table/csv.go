package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/burnish-io/burnish/record"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvSource streams one CSV (or TSV) file as records. The first row is the
// header; each following row becomes a record with the header's column
// order. Short rows pad with nil cells, long rows fail.
type csvSource struct {
	f      *os.File
	r      *csv.Reader
	header []string
	raw    bool
}

func openCSVSource(path string, tab bool, opts Options) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	if err := skipBOM(br); err != nil {
		f.Close()
		return nil, err
	}

	r := csv.NewReader(br)
	if tab {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return &csvSource{f: f, r: r, raw: opts.RawCells}, nil
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return &csvSource{f: f, r: r, header: header, raw: opts.RawCells}, nil
}

func skipBOM(br *bufio.Reader) error {
	peek, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if len(peek) == len(utf8BOM) && peek[0] == utf8BOM[0] && peek[1] == utf8BOM[1] && peek[2] == utf8BOM[2] {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return err
		}
	}
	return nil
}

func (s *csvSource) Columns() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

func (s *csvSource) Next() (*record.Record, error) {
	if s.header == nil {
		return nil, io.EOF
	}
	row, err := s.r.Read()
	if err != nil {
		return nil, err
	}
	if len(row) > len(s.header) {
		return nil, fmt.Errorf("row has %d cells, header has %d", len(row), len(s.header))
	}
	rec := record.New()
	for i, col := range s.header {
		if i >= len(row) {
			rec.Set(col, nil)
			continue
		}
		if s.raw {
			rec.Set(col, row[i])
			continue
		}
		rec.Set(col, inferCell(row[i]))
	}
	return rec, nil
}

func (s *csvSource) Close() error {
	return s.f.Close()
}

// csvSink writes records as CSV. Line endings are always "\n" — an
// explicit convention, never the platform default — so output is
// byte-reproducible across hosts. The header is written even when there
// are no data rows; an empty header writes nothing.
type csvSink struct {
	f   *os.File
	w   *csv.Writer
	tab bool
}

func createCSVSink(path string, tab bool) (*csvSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	w.UseCRLF = false // fixed "\n" terminator
	if tab {
		w.Comma = '\t'
	}
	return &csvSink{f: f, w: w, tab: tab}, nil
}

func (s *csvSink) Write(header []string, recs []*record.Record) error {
	if len(header) == 0 {
		return nil
	}
	if err := s.w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, rec := range recs {
		for i, col := range header {
			row[i] = record.Stringify(rec.Get(col))
		}
		if err := s.w.Write(row); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *csvSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
