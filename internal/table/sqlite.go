package table

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/burnish-io/burnish/record"
)

// sqliteSource streams one SQLite table in rowid order, columns in
// declared order. Options.Sheet names the table; when empty, a database
// with exactly one user table resolves to it, anything else is an error.
type sqliteSource struct {
	db   *sql.DB
	rows *sql.Rows
	cols []string
}

func openSQLiteSource(path string, opts Options) (*sqliteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	name, err := resolveTable(db, opts.Sheet)
	if err != nil {
		db.Close()
		return nil, err
	}

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM %s ORDER BY rowid`, quoteIdent(name)))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		db.Close()
		return nil, err
	}
	return &sqliteSource{db: db, rows: rows, cols: cols}, nil
}

// resolveTable returns the named table, or the sole user table when name
// is empty.
func resolveTable(db *sql.DB, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	rows, err := db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return "", err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("database has no tables")
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("database has %d tables; a sheet name is required", len(names))
	}
}

func (s *sqliteSource) Columns() []string {
	out := make([]string, len(s.cols))
	copy(out, s.cols)
	return out
}

func (s *sqliteSource) Next() (*record.Record, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	raw := make([]any, len(s.cols))
	ptrs := make([]any, len(s.cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	rec := record.New()
	for i, col := range s.cols {
		rec.Set(col, fromSQLite(raw[i]))
	}
	return rec, nil
}

func fromSQLite(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case nil, int64, float64, string, bool, time.Time:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (s *sqliteSource) Close() error {
	err := s.rows.Close()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// sqliteSink drops and recreates the target table, typing each column by
// the first record's value (INTEGER, REAL, or TEXT affinity; TEXT when
// there are no records), then inserts every record in one transaction. A
// header with no records still recreates the table, empty.
type sqliteSink struct {
	db    *sql.DB
	table string
}

func createSQLiteSink(path string, opts Options) (*sqliteSink, error) {
	if opts.Sheet == "" {
		return nil, fmt.Errorf("a sheet (table) name is required to write a SQLite destination")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &sqliteSink{db: db, table: opts.Sheet}, nil
}

func (s *sqliteSink) Write(header []string, recs []*record.Record) error {
	if len(header) == 0 {
		return nil
	}
	defs := make([]string, len(header))
	for i, col := range header {
		affinity := "TEXT"
		if len(recs) > 0 {
			affinity = columnAffinity(recs[0].Get(col))
		}
		defs[i] = quoteIdent(col) + " " + affinity
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	quoted := quoteIdent(s.table)
	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + quoted); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %s (%s)`, quoted, strings.Join(defs, ", "))); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(header)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoted, placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(header))
	for _, rec := range recs {
		for i, col := range header {
			args[i] = toSQLite(rec.Get(col))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func columnAffinity(v any) string {
	switch v.(type) {
	case int64, int, bool:
		return "INTEGER"
	case float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

func toSQLite(v any) any {
	switch val := v.(type) {
	case nil, int64, float64, string, bool, time.Time:
		return val
	case int:
		return int64(val)
	default:
		return record.Stringify(val)
	}
}

func (s *sqliteSink) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
