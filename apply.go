package burnish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/burnish-io/burnish/internal/fileglob"
	"github.com/burnish-io/burnish/internal/table"
	"github.com/burnish-io/burnish/record"
)

// DefaultSuffix is inserted before the extension by the default output
// naming policy: "people.csv" becomes "people.burnished.csv".
const DefaultSuffix = ".burnished"

// contextCheckInterval is how many records pass between cancellation
// checks while streaming a file.
const contextCheckInterval = 100

type applyConfig struct {
	sheet    string
	rawCells bool
	workers  int
	nameFn   func(string) string
}

// ApplyOption configures an Apply or ApplyGlob run.
type ApplyOption func(*applyConfig)

// Sheet selects the table within a multi-table container (the SQLite table
// name) for both source and destination.
func Sheet(name string) ApplyOption {
	return func(c *applyConfig) { c.sheet = name }
}

// RawCells disables numeric/bool typing of text cells read from CSV;
// every cell arrives as a string.
func RawCells() ApplyOption {
	return func(c *applyConfig) { c.rawCells = true }
}

// Workers bounds the number of files ApplyGlob processes in parallel.
// Values below one fall back to the host CPU count.
func Workers(n int) ApplyOption {
	return func(c *applyConfig) { c.workers = n }
}

// NameFunc overrides ApplyGlob's output naming policy.
func NameFunc(fn func(fromFile string) string) ApplyOption {
	return func(c *applyConfig) { c.nameFn = fn }
}

// DefaultName is the default output naming policy: the input path with
// DefaultSuffix inserted before the extension.
func DefaultName(fromFile string) string {
	ext := filepath.Ext(fromFile)
	return strings.TrimSuffix(fromFile, ext) + DefaultSuffix + ext
}

func newApplyConfig(opts []ApplyOption) *applyConfig {
	c := &applyConfig{nameFn: DefaultName}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = runtime.NumCPU()
	}
	return c
}

// Apply streams every record of fromFile through the rule registry and
// writes the normalized records to toFile, returning toFile.
//
// There is no overwrite protection: toFile may equal fromFile, in which
// case the input is overwritten (records are fully read before the sink
// truncates the destination). Source and sink are released on every exit
// path. The pipeline itself is untouched and reusable.
func (p *Pipeline) Apply(ctx context.Context, fromFile, toFile string, opts ...ApplyOption) (string, error) {
	cfg := newApplyConfig(opts)
	rules, err := p.compile()
	if err != nil {
		return "", err
	}

	recs, header, err := p.readAndNormalize(ctx, fromFile, cfg, rules)
	if err != nil {
		return "", err
	}
	// Record rules may reshape columns; once there is data, the first
	// normalized record is the header. The source header only carries a
	// table with zero data rows through intact.
	if len(recs) > 0 {
		header = recs[0].Columns()
	}

	sink, err := table.CreateSink(toFile, table.Options{Sheet: cfg.sheet})
	if err != nil {
		return "", err
	}
	defer sink.Close()

	if err := sink.Write(header, recs); err != nil {
		return "", fmt.Errorf("write %s: %w", toFile, err)
	}
	if err := sink.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", toFile, err)
	}
	return toFile, nil
}

// readAndNormalize drains the source through the registry. Kept separate
// from Apply so the deferred source close cannot interleave with sink
// creation when destination equals source.
func (p *Pipeline) readAndNormalize(ctx context.Context, fromFile string, cfg *applyConfig, rules []compiledRule) ([]*record.Record, []string, error) {
	src, err := table.OpenSource(fromFile, table.Options{Sheet: cfg.sheet, RawCells: cfg.rawCells})
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	header := src.Columns()
	var out []*record.Record
	for n := 0; ; n++ {
		if n%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", fromFile, err)
		}
		normalized, err := normalize(rec, rules)
		if err != nil {
			return nil, nil, fmt.Errorf("normalize %s record %d: %w", fromFile, n, err)
		}
		out = append(out, normalized)
	}
	return out, header, nil
}

// ApplyGlob maps Apply over every file matching pattern, in parallel.
//
// The pattern supports brace expansion ("data/*.{csv,tsv}"). Each matched
// file is processed to completion by one worker; workers share nothing but
// the read-only rule registry. The worker count defaults to the host CPU
// count. Output paths come from NameFunc (default DefaultName) and are
// returned for all inputs, one per matched file, with no ordering
// relationship to completion order.
//
// If any file fails, the first error is returned after in-flight work
// drains; outputs already written for other files are not rolled back.
func (p *Pipeline) ApplyGlob(ctx context.Context, pattern string, opts ...ApplyOption) ([]string, error) {
	cfg := newApplyConfig(opts)

	files, err := fileglob.Expand(pattern)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", pattern, err)
	}

	job := uuid.Must(uuid.NewV7()).String()
	slog.Info("apply starting",
		"job", job, "pipeline", p.displayName(),
		"pattern", pattern, "files", len(files), "workers", cfg.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	outs := make([]string, len(files))
	for i, fromFile := range files {
		g.Go(func() error {
			toFile, err := p.Apply(gctx, fromFile, cfg.nameFn(fromFile), opts...)
			if err != nil {
				slog.Error("apply failed", "job", job, "file", fromFile, "error", err)
				return fmt.Errorf("%s: %w", fromFile, err)
			}
			outs[i] = toFile
			slog.Debug("apply finished", "job", job, "file", fromFile, "out", toFile)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("apply complete", "job", job, "files", len(files))
	return outs, nil
}
