package burnish

import (
	"strings"

	"github.com/burnish-io/burnish/record"
)

// Record rule builders. Record rules rewrite the whole record, take no
// filters, and run after every value rule, in registration order.

// AddColumns adds each (name, value) entry that is not already present.
// A ColumnFunc value is computed from the record; a string value is a
// {column} template expanded against the record's fields (an absent field
// is a ColumnError); anything else is used literally.
//
//	p.AddColumns(burnish.Pairs{
//		{"full_name", "{first} {last}"},
//		{"flagged", burnish.ColumnFunc(func(r *record.Record) any { return r.Len() > 4 })},
//	})
func (p *Pipeline) AddColumns(columns Pairs) *Pipeline {
	return p.register("add_columns", params{"columns": pairsParam(columns)}, nil)
}

// RemoveColumns deletes each named column; absent names are no-ops.
func (p *Pipeline) RemoveColumns(names ...string) *Pipeline {
	return p.register("remove_columns", params{"columns": stringsParam(names)}, nil)
}

// RenameColumns rewrites column names per the mapping, preserving each
// column's position. Columns not in the mapping are untouched.
func (p *Pipeline) RenameColumns(renames Pairs) *Pipeline {
	return p.register("rename_columns", params{"renames": pairsParam(renames)}, nil)
}

// OrderColumns rebuilds the record with the named columns first, in the
// given order, skipping names the record does not have. Unless
// ignoreMissing, the remaining columns follow in their original relative
// order; with ignoreMissing they are dropped.
func (p *Pipeline) OrderColumns(order []string, ignoreMissing bool) *Pipeline {
	return p.register("order_columns", params{
		"order":          stringsParam(order),
		"ignore_missing": ignoreMissing,
	}, nil)
}

// --- apply functions -----------------------------------------------------

func applyAddColumns(rec *record.Record, p params) (*record.Record, error) {
	for _, pair := range paramPairs(p, "columns") {
		if rec.Has(pair.key) {
			continue
		}
		switch val := pair.value.(type) {
		case ColumnFunc:
			rec.Set(pair.key, val(rec))
		case func(*record.Record) any:
			rec.Set(pair.key, val(rec))
		case string:
			expanded, err := expandFields(val, rec)
			if err != nil {
				return nil, err
			}
			rec.Set(pair.key, expanded)
		default:
			rec.Set(pair.key, pair.value)
		}
	}
	return rec, nil
}

func applyRemoveColumns(rec *record.Record, p params) (*record.Record, error) {
	for _, name := range paramStrings(p, "columns") {
		rec.Delete(name)
	}
	return rec, nil
}

func applyRenameColumns(rec *record.Record, p params) (*record.Record, error) {
	renames := make(map[string]string)
	for _, pair := range paramPairs(p, "renames") {
		if to, ok := pair.value.(string); ok {
			renames[pair.key] = to
		}
	}
	out := record.New()
	for _, col := range rec.Columns() {
		name := col
		if to, ok := renames[col]; ok {
			name = to
		}
		out.Set(name, rec.Get(col))
	}
	return out, nil
}

func applyOrderColumns(rec *record.Record, p params) (*record.Record, error) {
	order := paramStrings(p, "order")
	out := record.New()
	for _, name := range order {
		if v, ok := rec.Lookup(name); ok {
			out.Set(name, v)
		}
	}
	if !paramBool(p, "ignore_missing") {
		for _, col := range rec.Columns() {
			if !out.Has(col) {
				out.Set(col, rec.Get(col))
			}
		}
	}
	return out, nil
}

// expandFields substitutes every {column} placeholder in tpl with the
// record's stringified value for that column. Referencing an absent column
// fails; the pipeline does not invent fields.
func expandFields(tpl string, rec *record.Record) (string, error) {
	var b strings.Builder
	for {
		open := strings.IndexByte(tpl, '{')
		if open < 0 {
			b.WriteString(tpl)
			return b.String(), nil
		}
		end := strings.IndexByte(tpl[open:], '}')
		if end < 0 {
			b.WriteString(tpl)
			return b.String(), nil
		}
		end += open
		b.WriteString(tpl[:open])
		name := tpl[open+1 : end]
		v, ok := rec.Lookup(name)
		if !ok {
			return "", &ColumnError{Column: name}
		}
		b.WriteString(record.Stringify(v))
		tpl = tpl[end+1:]
	}
}
