package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnish-io/burnish/record"
)

func sampleColumns() []string {
	return []string{"name", "count", "ratio"}
}

func sampleRecords() []*record.Record {
	return []*record.Record{
		record.FromItems(
			record.Item{Column: "name", Value: "ada"},
			record.Item{Column: "count", Value: int64(3)},
			record.Item{Column: "ratio", Value: 2.5},
		),
		record.FromItems(
			record.Item{Column: "name", Value: "grace"},
			record.Item{Column: "count", Value: int64(7)},
			record.Item{Column: "ratio", Value: 0.5},
		),
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	sink, err := CreateSink(path, Options{Sheet: "people"})
	require.NoError(t, err)
	require.NoError(t, sink.Write(sampleColumns(), sampleRecords()))
	require.NoError(t, sink.Close())

	src, err := OpenSource(path, Options{Sheet: "people"})
	require.NoError(t, err)
	defer src.Close()

	recs := drain(t, src)
	require.Len(t, recs, 2)

	assert.Equal(t, []string{"name", "count", "ratio"}, recs[0].Columns())
	assert.Equal(t, "ada", recs[0].Get("name"))
	assert.Equal(t, int64(3), recs[0].Get("count"))
	assert.Equal(t, 2.5, recs[0].Get("ratio"))
	assert.Equal(t, "grace", recs[1].Get("name"), "rows come back in insertion order")
}

func TestSQLiteSourceResolvesSoleTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sqlite")

	sink, err := CreateSink(path, Options{Sheet: "only"})
	require.NoError(t, err)
	require.NoError(t, sink.Write(sampleColumns(), sampleRecords()))
	require.NoError(t, sink.Close())

	src, err := OpenSource(path, Options{})
	require.NoError(t, err)
	defer src.Close()

	assert.Len(t, drain(t, src), 2, "a single-table database needs no sheet name")
}

func TestSQLiteSourceAmbiguousTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	for _, table := range []string{"first", "second"} {
		sink, err := CreateSink(path, Options{Sheet: table})
		require.NoError(t, err)
		require.NoError(t, sink.Write(sampleColumns(), sampleRecords()))
		require.NoError(t, sink.Close())
	}

	_, err := OpenSource(path, Options{})
	assert.Error(t, err, "two tables and no sheet name is ambiguous")
}

func TestSQLiteSinkRequiresSheet(t *testing.T) {
	_, err := CreateSink(filepath.Join(t.TempDir(), "data.db"), Options{})
	assert.Error(t, err)
}

func TestSQLiteSinkReplacesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	sink, err := CreateSink(path, Options{Sheet: "t"})
	require.NoError(t, err)
	require.NoError(t, sink.Write(sampleColumns(), sampleRecords()))
	require.NoError(t, sink.Close())

	sink, err = CreateSink(path, Options{Sheet: "t"})
	require.NoError(t, err)
	require.NoError(t, sink.Write(sampleColumns(), sampleRecords()[:1]))
	require.NoError(t, sink.Close())

	src, err := OpenSource(path, Options{Sheet: "t"})
	require.NoError(t, err)
	defer src.Close()

	assert.Len(t, drain(t, src), 1, "writing truncates, never appends")
}

func TestSQLiteSinkHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	sink, err := CreateSink(path, Options{Sheet: "t"})
	require.NoError(t, err)
	require.NoError(t, sink.Write([]string{"a", "b"}, nil))
	require.NoError(t, sink.Close())

	src, err := OpenSource(path, Options{Sheet: "t"})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, []string{"a", "b"}, src.Columns(), "zero records still create the table shape")
	assert.Empty(t, drain(t, src))
}

func TestSQLiteQuotedIdentifiers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	recs := []*record.Record{record.FromItems(
		record.Item{Column: `odd "name"`, Value: "x"},
	)}

	sink, err := CreateSink(path, Options{Sheet: `weird table`})
	require.NoError(t, err)
	require.NoError(t, sink.Write(recs[0].Columns(), recs))
	require.NoError(t, sink.Close())

	src, err := OpenSource(path, Options{Sheet: `weird table`})
	require.NoError(t, err)
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Get(`odd "name"`))
}
