package burnish

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/burnish-io/burnish/internal/canon"
	"github.com/burnish-io/burnish/record"
)

// Kind classifies a rule as value-level or record-level. Each named rule has
// exactly one intrinsic kind, fixed by its entry in the rule table; callers
// never choose.
type Kind int

const (
	// KindValue rules rewrite one column's value, gated by filters.
	KindValue Kind = iota
	// KindRecord rules rewrite the whole record, unconditionally.
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// WhereFunc is a callable filter predicate. It receives the full record and
// the column under consideration; a falsy result blocks the rule for that
// column. Extra arguments are captured by the closure.
//
// WhereFunc is not serializable: it is excluded from the pipeline uid and
// dropped (with a warning) on export.
type WhereFunc func(rec *record.Record, column string) bool

// ColumnFunc computes a cell value from a record. Used for callable values
// in AddColumns; like WhereFunc it does not survive export.
type ColumnFunc func(rec *record.Record) any

// params is the JSON-shaped argument bag carried by a registration.
// Everything in it except embedded callables must canonicalize.
type params map[string]any

// Registration is one appended rule invocation: a rule name paired with its
// bound arguments. Immutable once appended; registry order is application
// order.
type Registration struct {
	rule   string
	kind   Kind
	params params
	where  WhereFunc
}

// Rule returns the registered rule name.
func (r Registration) Rule() string { return r.rule }

// Kind returns the rule's intrinsic kind.
func (r Registration) Kind() Kind { return r.kind }

// Params returns a JSON-safe copy of the registration's arguments with any
// callables removed.
func (r Registration) Params() map[string]any {
	clean, _ := canon.Sanitize(map[string]any(r.params))
	m, _ := clean.(map[string]any)
	return m
}

// hasCallable reports whether the registration holds anything that cannot
// survive serialization.
func (r Registration) hasCallable() bool {
	if r.where != nil {
		return true
	}
	_, dropped := canon.Sanitize(map[string]any(r.params))
	return dropped
}

// valueFunc rewrites one column of a record. The record passed in is a
// snapshot copy; the function returns the replacement cell value.
type valueFunc func(rec *record.Record, column string, p params) (any, error)

// recordFunc rewrites a whole record. The record passed in is a copy; the
// function returns the replacement record.
type recordFunc func(rec *record.Record, p params) (*record.Record, error)

// ruleSpec is one entry in the static rule table: the rule's intrinsic kind,
// its apply function, and a shape check used when replaying serialized
// registrations.
type ruleSpec struct {
	kind   Kind
	value  valueFunc
	record recordFunc
	check  func(p params) error
}

// ruleTable maps rule names to their specs. This is the whole rule
// vocabulary; registration resolves kind and dispatch here exactly once.
var ruleTable = map[string]ruleSpec{
	"lower":      {kind: KindValue, value: applyLower, check: checkFilterOnly},
	"upper":      {kind: KindValue, value: applyUpper, check: checkFilterOnly},
	"capitalize": {kind: KindValue, value: applyCapitalize, check: checkFilterOnly},
	"title":      {kind: KindValue, value: applyTitle, check: checkFilterOnly},

	"strip":  {kind: KindValue, value: applyStrip, check: checkStrip},
	"lstrip": {kind: KindValue, value: applyLStrip, check: checkStrip},
	"rstrip": {kind: KindValue, value: applyRStrip, check: checkStrip},

	"increment": {kind: KindValue, value: applyIncrement, check: checkAmount},
	"decrement": {kind: KindValue, value: applyDecrement, check: checkAmount},

	"replace":        {kind: KindValue, value: applyReplace, check: checkPairsKey("replacements")},
	"substitute":     {kind: KindValue, value: applySubstitute, check: checkPairsKey("substitutes")},
	"translate_text": {kind: KindValue, value: applyTranslateText, check: checkPairsKey("translations")},
	"translate_date": {kind: KindValue, value: applyTranslateDate, check: checkPairsKey("formats")},

	"add_columns":    {kind: KindRecord, record: applyAddColumns, check: checkPairsKey("columns")},
	"remove_columns": {kind: KindRecord, record: applyRemoveColumns, check: checkStringsKey("columns")},
	"rename_columns": {kind: KindRecord, record: applyRenameColumns, check: checkPairsKey("renames")},
	"order_columns":  {kind: KindRecord, record: applyOrderColumns, check: checkOrder},
}

// register appends a rule invocation to the registry. Builder methods funnel
// through here; the rule name is always a ruleTable key by construction.
func (p *Pipeline) register(rule string, base params, opts []Option) *Pipeline {
	spec, ok := ruleTable[rule]
	if !ok {
		panic(fmt.Sprintf("burnish: unknown rule %q", rule))
	}
	if base == nil {
		base = params{}
	}
	reg := Registration{rule: rule, kind: spec.kind, params: base}
	for _, opt := range opts {
		opt(&reg)
	}
	p.warnIfUnscopedDate(reg)
	p.rules = append(p.rules, reg)
	return p
}

// warnIfUnscopedDate flags a translate_date registration carrying no column
// scoping. Date detection across unscoped columns is a false-positive
// hazard; the registration still executes. Builder and replay paths both
// funnel through this check.
func (p *Pipeline) warnIfUnscopedDate(reg Registration) {
	if reg.rule != "translate_date" {
		return
	}
	if _, scoped := reg.params["column_filter"]; !scoped {
		slog.Warn("translate_date registered without a column_filter; "+
			"date detection may rewrite unrelated columns",
			"pipeline", p.displayName())
	}
}

// --- parameter accessors -------------------------------------------------
//
// Params arrive from three places with three numeric spellings: builders
// (float64/int64), JSON (float64), and YAML (int). The accessors accept all
// of them so replayed registrations behave identically to built ones.

func paramString(p params, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func paramFloat(p params, key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

func paramBool(p params, key string) bool {
	b, _ := p[key].(bool)
	return b
}

// pairItem is one entry of an ordered mapping parameter.
type pairItem struct {
	key   string
	value any
}

// paramPairs reads an ordered mapping stored as an array of two-element
// arrays. Malformed entries are skipped; the check functions reject them
// before replay.
func paramPairs(p params, key string) []pairItem {
	raw := asSlice(p[key])
	out := make([]pairItem, 0, len(raw))
	for _, elem := range raw {
		pair := asSlice(elem)
		if len(pair) != 2 {
			continue
		}
		k, ok := pair[0].(string)
		if !ok {
			continue
		}
		out = append(out, pairItem{key: k, value: pair[1]})
	}
	return out
}

func paramStrings(p params, key string) []string {
	switch v := p[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	default:
		raw := asSlice(p[key])
		out := make([]string, 0, len(raw))
		for _, elem := range raw {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	default:
		return nil
	}
}

// --- shape checks for replayed registrations -----------------------------

func checkFilters(p params) error {
	for _, key := range []string{"column_filter", "value_filter"} {
		if v, ok := p[key]; ok {
			if _, isStr := v.(string); !isStr {
				return fmt.Errorf("%s must be a string pattern", key)
			}
		}
	}
	return nil
}

func checkFilterOnly(p params) error {
	return checkFilters(p)
}

func checkStrip(p params) error {
	if v, ok := p["chars"]; ok {
		if _, isStr := v.(string); !isStr {
			return fmt.Errorf("chars must be a string")
		}
	}
	return checkFilters(p)
}

func checkAmount(p params) error {
	if v, ok := p["amount"]; ok {
		switch v.(type) {
		case int, int64, float64, json.Number:
		default:
			return fmt.Errorf("amount must be numeric")
		}
	}
	return checkFilters(p)
}

// checkPairsKey requires key to hold an array of [key, value] pairs.
func checkPairsKey(key string) func(p params) error {
	return func(p params) error {
		raw, ok := p[key]
		if !ok {
			return fmt.Errorf("missing required parameter %q", key)
		}
		elems := asSlice(raw)
		if elems == nil {
			return fmt.Errorf("%s must be an array of [key, value] pairs", key)
		}
		for i, elem := range elems {
			pair := asSlice(elem)
			if len(pair) != 2 {
				return fmt.Errorf("%s[%d] must be a [key, value] pair", key, i)
			}
			if _, isStr := pair[0].(string); !isStr {
				return fmt.Errorf("%s[%d] key must be a string", key, i)
			}
		}
		return checkFilters(p)
	}
}

func checkStringsKey(key string) func(p params) error {
	return func(p params) error {
		raw, ok := p[key]
		if !ok {
			return fmt.Errorf("missing required parameter %q", key)
		}
		elems := asSlice(raw)
		if elems == nil {
			return fmt.Errorf("%s must be an array of strings", key)
		}
		for i, elem := range elems {
			if _, isStr := elem.(string); !isStr {
				return fmt.Errorf("%s[%d] must be a string", key, i)
			}
		}
		return checkFilters(p)
	}
}

func checkOrder(p params) error {
	if err := checkStringsKey("order")(p); err != nil {
		return err
	}
	if v, ok := p["ignore_missing"]; ok {
		if _, isBool := v.(bool); !isBool {
			return fmt.Errorf("ignore_missing must be a bool")
		}
	}
	return nil
}
