package table

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnish-io/burnish/record"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func drain(t *testing.T, src Source) []*record.Record {
	t.Helper()
	var out []*record.Record
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestCSVSourceReadsTypedRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	writeFile(t, path, "name,count,ratio,ok,note\nada,3,2.5,true,\n")

	src, err := OpenSource(path, Options{})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, []string{"name", "count", "ratio", "ok", "note"}, src.Columns())

	recs := drain(t, src)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, []string{"name", "count", "ratio", "ok", "note"}, rec.Columns())
	assert.Equal(t, "ada", rec.Get("name"))
	assert.Equal(t, int64(3), rec.Get("count"))
	assert.Equal(t, 2.5, rec.Get("ratio"))
	assert.Equal(t, true, rec.Get("ok"))
	assert.Nil(t, rec.Get("note"), "empty cells are nil")
}

func TestCSVSourceRawCells(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	writeFile(t, path, "a,b\n3,true\n")

	src, err := OpenSource(path, Options{RawCells: true})
	require.NoError(t, err)
	defer src.Close()

	recs := drain(t, src)
	require.Len(t, recs, 1)
	assert.Equal(t, "3", recs[0].Get("a"))
	assert.Equal(t, "true", recs[0].Get("b"))
}

func TestCSVSourceSkipsBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	writeFile(t, path, "\xEF\xBB\xBFname\nada\n")

	src, err := OpenSource(path, Options{})
	require.NoError(t, err)
	defer src.Close()

	recs := drain(t, src)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"name"}, recs[0].Columns())
}

func TestCSVSourceShortAndLongRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	writeFile(t, path, "a,b,c\n1,2\n")

	src, err := OpenSource(path, Options{})
	require.NoError(t, err)
	defer src.Close()

	rec, err := src.Next()
	require.NoError(t, err)
	assert.Nil(t, rec.Get("c"), "short rows pad with nil")

	long := filepath.Join(dir, "long.csv")
	writeFile(t, long, "a\n1,2\n")
	src2, err := OpenSource(long, Options{})
	require.NoError(t, err)
	defer src2.Close()

	_, err = src2.Next()
	assert.Error(t, err, "rows longer than the header fail")
}

func TestCSVSourceEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	writeFile(t, path, "")

	src, err := OpenSource(path, Options{})
	require.NoError(t, err)
	defer src.Close()

	assert.Empty(t, src.Columns())
	assert.Empty(t, drain(t, src))
}

func TestCSVSourceHeaderOnlyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	writeFile(t, path, "a,b\n")

	src, err := OpenSource(path, Options{})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, []string{"a", "b"}, src.Columns())
	assert.Empty(t, drain(t, src))
}

func TestTSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tsv")

	sink, err := CreateSink(path, Options{})
	require.NoError(t, err)
	require.NoError(t, sink.Write([]string{"a", "b"}, []*record.Record{
		record.FromItems(
			record.Item{Column: "a", Value: "x"},
			record.Item{Column: "b", Value: int64(1)},
		),
	}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\nx\t1\n", string(data))
}

func TestCSVSinkOutputForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	sink, err := CreateSink(path, Options{})
	require.NoError(t, err)
	require.NoError(t, sink.Write([]string{"n", "s", "e"}, []*record.Record{
		record.FromItems(
			record.Item{Column: "n", Value: 5.0},
			record.Item{Column: "s", Value: "has,comma"},
			record.Item{Column: "e", Value: nil},
		),
	}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "n,s,e\n5,\"has,comma\",\n", string(data),
		"integral floats print without a fraction; lines end with \\n")
}

func TestCSVSinkHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	sink, err := CreateSink(path, Options{})
	require.NoError(t, err)
	require.NoError(t, sink.Write([]string{"a", "b"}, nil))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data), "zero records still keep the header")

	empty := filepath.Join(dir, "empty.csv")
	sink, err = CreateSink(empty, Options{})
	require.NoError(t, err)
	require.NoError(t, sink.Write(nil, nil))
	require.NoError(t, sink.Close())

	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.Empty(t, data, "no header writes nothing")
}

func TestUnknownExtension(t *testing.T) {
	_, err := OpenSource("file.xlsx", Options{})
	assert.Error(t, err)

	_, err = CreateSink("file.xlsx", Options{})
	assert.Error(t, err)
}

func TestInferCell(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"10", int64(10)},
		{"-3", int64(-3)},
		{"2.5", 2.5},
		{".5", 0.5},
		{"1e3", 1000.0},
		{"true", true},
		{"false", false},
		{"True", "True"},
		{"inf", "inf"},
		{"  10 ", "  10 "},
		{"10x", "10x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferCell(tt.in), "input %q", tt.in)
	}
}
