// Package record defines the ordered column→value mapping that one row of
// table data is represented as while it moves through a normalization
// pipeline.
//
// A Record preserves column order (column order is output order) and keeps
// keys unique. Cell values are constrained to a small set of types:
// string, int64, float64, bool, time.Time, and nil for empty cells.
// Rules never see a richer type than these.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Item is one (column, value) entry, used for literal Record construction.
type Item struct {
	Column string
	Value  any
}

// Record is an ordered mapping from column name to cell value.
//
// The zero value is not usable; construct with New or FromItems.
// Records are not safe for concurrent mutation; the pipeline clones
// before every rule invocation so rules never share one.
type Record struct {
	keys []string
	vals map[string]any
}

// New returns an empty Record.
func New() *Record {
	return &Record{vals: make(map[string]any)}
}

// FromItems builds a Record from items in order.
// A repeated column name overwrites the value but keeps the first position.
func FromItems(items ...Item) *Record {
	r := New()
	for _, it := range items {
		r.Set(it.Column, it.Value)
	}
	return r
}

// Len returns the number of columns.
func (r *Record) Len() int {
	return len(r.keys)
}

// Columns returns the column names in order. The slice is a copy;
// callers may mutate the record while ranging over it.
func (r *Record) Columns() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value for column, or nil when the column is absent.
func (r *Record) Get(column string) any {
	return r.vals[column]
}

// Lookup returns the value for column and whether the column exists.
func (r *Record) Lookup(column string) (any, bool) {
	v, ok := r.vals[column]
	return v, ok
}

// Has reports whether the column exists.
func (r *Record) Has(column string) bool {
	_, ok := r.vals[column]
	return ok
}

// Set stores value under column, appending the column at the end when it is
// new and keeping its position when it already exists. Returns the record
// for chaining.
func (r *Record) Set(column string, value any) *Record {
	if _, ok := r.vals[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.vals[column] = value
	return r
}

// Delete removes a column, reporting whether it was present.
func (r *Record) Delete(column string) bool {
	if _, ok := r.vals[column]; !ok {
		return false
	}
	delete(r.vals, column)
	for i, k := range r.keys {
		if k == column {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Items returns the entries in column order.
func (r *Record) Items() []Item {
	out := make([]Item, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Item{Column: k, Value: r.vals[k]})
	}
	return out
}

// Clone returns an independent copy. Cell values are immutable types, so a
// shallow value copy is a full copy.
func (r *Record) Clone() *Record {
	out := &Record{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]any, len(r.vals)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// Equal reports whether two records have the same columns in the same order
// with equal values.
func (r *Record) Equal(o *Record) bool {
	if o == nil || len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k {
			return false
		}
		if !valueEqual(r.vals[k], o.vals[k]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok || bok {
		return aok && bok && at.Equal(bt)
	}
	return a == b
}

// String renders the record as {col: value, ...} in column order.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", k, Stringify(r.vals[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// Stringify converts a cell value to its deterministic text form. This is
// the form value filters and pattern rules match against: numbers use the
// shortest round-trip representation, times use RFC 3339, nil is empty.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsText reports whether v is a text cell.
func IsText(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsNumber reports whether v is a numeric cell (int64, int, or float64).
func IsNumber(v any) bool {
	switch v.(type) {
	case int64, int, float64:
		return true
	}
	return false
}

// IsTime reports whether v is a time cell.
func IsTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}
