package burnish

// Pair is one entry of an ordered mapping argument. Go maps iterate in
// random order, so every rule that takes an ordered mapping takes a Pairs
// slice; slice order is application order.
type Pair struct {
	Key   string
	Value any
}

// Pairs is an ordered mapping argument.
type Pairs []Pair

// P builds a Pair.
func P(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// pairsParam converts Pairs to the JSON-shaped array-of-[key,value]-arrays
// form that registrations carry and envelopes serialize.
func pairsParam(ps Pairs) []any {
	out := make([]any, len(ps))
	for i, p := range ps {
		out[i] = []any{p.Key, p.Value}
	}
	return out
}

func stringsParam(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Option configures a single rule registration: filters gating a value
// rule, or optional rule parameters such as Amount and Chars.
type Option func(*Registration)

// Columns gates a value rule to columns whose name matches pattern,
// anchored at the start.
func Columns(pattern string) Option {
	return func(r *Registration) {
		r.params["column_filter"] = pattern
	}
}

// Values gates a value rule to cells whose stringified value matches
// pattern, anchored at the start.
func Values(pattern string) Option {
	return func(r *Registration) {
		r.params["value_filter"] = pattern
	}
}

// Where gates a value rule with an arbitrary predicate. The predicate is
// ANDed with any Columns/Values patterns. It is not serializable: export
// drops it with a warning and the uid never includes it.
func Where(fn WhereFunc) Option {
	return func(r *Registration) {
		r.where = fn
	}
}

// Chars sets the explicit strip character set for the strip family.
// Default is whitespace.
func Chars(cutset string) Option {
	return func(r *Registration) {
		r.params["chars"] = cutset
	}
}

// Amount sets the increment/decrement amount. Default is 1.
func Amount(n float64) Option {
	return func(r *Registration) {
		r.params["amount"] = n
	}
}
