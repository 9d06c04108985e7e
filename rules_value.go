package burnish

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/burnish-io/burnish/record"
)

// Value rule builders. Each appends a registration and returns the same
// pipeline for chaining. Every value rule is a pure function of
// (record snapshot, column, params); rules no-op on cells of the wrong type
// rather than erroring.

// Lower lowercases text values.
func (p *Pipeline) Lower(opts ...Option) *Pipeline {
	return p.register("lower", nil, opts)
}

// Upper uppercases text values.
func (p *Pipeline) Upper(opts ...Option) *Pipeline {
	return p.register("upper", nil, opts)
}

// Capitalize uppercases the first character of text values and lowercases
// the rest.
func (p *Pipeline) Capitalize(opts ...Option) *Pipeline {
	return p.register("capitalize", nil, opts)
}

// Title title-cases text values.
func (p *Pipeline) Title(opts ...Option) *Pipeline {
	return p.register("title", nil, opts)
}

// Strip trims the strip set (default whitespace, override with Chars) from
// both ends of text values.
func (p *Pipeline) Strip(opts ...Option) *Pipeline {
	return p.register("strip", nil, opts)
}

// LStrip trims the strip set from the left of text values.
func (p *Pipeline) LStrip(opts ...Option) *Pipeline {
	return p.register("lstrip", nil, opts)
}

// RStrip trims the strip set from the right of text values.
func (p *Pipeline) RStrip(opts ...Option) *Pipeline {
	return p.register("rstrip", nil, opts)
}

// Increment adds Amount (default 1) to numeric values.
func (p *Pipeline) Increment(opts ...Option) *Pipeline {
	return p.register("increment", nil, opts)
}

// Decrement subtracts Amount (default 1) from numeric values.
func (p *Pipeline) Decrement(opts ...Option) *Pipeline {
	return p.register("decrement", nil, opts)
}

// Replace applies an ordered mapping of literal substring replacements to
// text values, each pair applied in sequence over the result of the last.
func (p *Pipeline) Replace(replacements Pairs, opts ...Option) *Pipeline {
	return p.register("replace", params{"replacements": pairsParam(replacements)}, opts)
}

// Substitute replaces the whole value with the first substitute whose
// pattern matches the stringified value, anchored at the start.
//
//	p.Substitute(burnish.Pairs{{`^\d+`, "STARTED WITH A NUMBER"}})
func (p *Pipeline) Substitute(substitutes Pairs, opts ...Option) *Pipeline {
	return p.register("substitute", params{"substitutes": pairsParam(substitutes)}, opts)
}

// TranslateText reformats the value through every matching entry of an
// ordered (pattern, template) mapping, in order: each matching pattern's
// captures feed its template ($1, ${name}; missing groups become empty),
// and the reformatted text is what the next entry matches against.
//
//	p.TranslateText(
//		burnish.Pairs{{`^group(?P<id>\d+)`, `${id}`}},
//		burnish.Columns(`^group_definition$`),
//	)
func (p *Pipeline) TranslateText(translations Pairs, opts ...Option) *Pipeline {
	return p.register("translate_text", params{"translations": pairsParam(translations)}, opts)
}

// TranslateDate tries each (source layout, target layout) pair in order
// against the stringified value; the first source layout that parses wins
// and the value becomes the parsed time rendered in that pair's target
// layout. Values that are already time cells are rendered with the first
// target layout directly. Layouts are Go reference layouts ("2006-01-02").
//
// Date detection across unscoped columns is a known false-positive hazard;
// registering without a Columns filter logs a warning but still executes.
func (p *Pipeline) TranslateDate(formats Pairs, opts ...Option) *Pipeline {
	return p.register("translate_date", params{"formats": pairsParam(formats)}, opts)
}

// --- apply functions -----------------------------------------------------

func applyLower(rec *record.Record, column string, _ params) (any, error) {
	v := rec.Get(column)
	if s, ok := v.(string); ok {
		return strings.ToLower(s), nil
	}
	return v, nil
}

func applyUpper(rec *record.Record, column string, _ params) (any, error) {
	v := rec.Get(column)
	if s, ok := v.(string); ok {
		return strings.ToUpper(s), nil
	}
	return v, nil
}

func applyCapitalize(rec *record.Record, column string, _ params) (any, error) {
	v := rec.Get(column)
	s, ok := v.(string)
	if !ok || s == "" {
		return v, nil
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:]), nil
}

func applyTitle(rec *record.Record, column string, _ params) (any, error) {
	v := rec.Get(column)
	if s, ok := v.(string); ok {
		return cases.Title(language.Und).String(s), nil
	}
	return v, nil
}

func applyStrip(rec *record.Record, column string, p params) (any, error) {
	return stripValue(rec.Get(column), p, strings.Trim, strings.TrimSpace), nil
}

func applyLStrip(rec *record.Record, column string, p params) (any, error) {
	return stripValue(rec.Get(column), p, strings.TrimLeft, func(s string) string {
		return strings.TrimLeftFunc(s, unicode.IsSpace)
	}), nil
}

func applyRStrip(rec *record.Record, column string, p params) (any, error) {
	return stripValue(rec.Get(column), p, strings.TrimRight, func(s string) string {
		return strings.TrimRightFunc(s, unicode.IsSpace)
	}), nil
}

func stripValue(v any, p params, trimSet func(string, string) string, trimSpace func(string) string) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if chars, ok := paramString(p, "chars"); ok {
		return trimSet(s, chars)
	}
	return trimSpace(s)
}

func applyIncrement(rec *record.Record, column string, p params) (any, error) {
	return addAmount(rec.Get(column), paramFloat(p, "amount", 1)), nil
}

func applyDecrement(rec *record.Record, column string, p params) (any, error) {
	return addAmount(rec.Get(column), -paramFloat(p, "amount", 1)), nil
}

// addAmount keeps integer cells integral when the amount is a whole
// number; otherwise the result promotes to float.
func addAmount(v any, amount float64) any {
	switch n := v.(type) {
	case int64:
		if amount == float64(int64(amount)) {
			return n + int64(amount)
		}
		return float64(n) + amount
	case int:
		if amount == float64(int64(amount)) {
			return int64(n) + int64(amount)
		}
		return float64(n) + amount
	case float64:
		return n + amount
	default:
		return v
	}
}

func applyReplace(rec *record.Record, column string, p params) (any, error) {
	v := rec.Get(column)
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	for _, pair := range paramPairs(p, "replacements") {
		to, _ := pair.value.(string)
		s = strings.ReplaceAll(s, pair.key, to)
	}
	return s, nil
}

func applySubstitute(rec *record.Record, column string, p params) (any, error) {
	v := rec.Get(column)
	s := record.Stringify(v)
	for _, pair := range paramPairs(p, "substitutes") {
		re, err := compileStartAnchored(pair.key)
		if err != nil {
			return nil, &RuleError{Rule: "substitute", Reason: err.Error()}
		}
		if re.MatchString(s) {
			return pair.value, nil
		}
	}
	return v, nil
}

func applyTranslateText(rec *record.Record, column string, p params) (any, error) {
	v := rec.Get(column)
	cur := record.Stringify(v)
	translated := false
	for _, pair := range paramPairs(p, "translations") {
		re, err := compileStartAnchored(pair.key)
		if err != nil {
			return nil, &RuleError{Rule: "translate_text", Reason: err.Error()}
		}
		m := re.FindStringSubmatchIndex(cur)
		if m == nil {
			continue
		}
		tpl, _ := pair.value.(string)
		cur = string(re.ExpandString(nil, tpl, cur, m))
		translated = true
	}
	if !translated {
		return v, nil
	}
	return cur, nil
}

func applyTranslateDate(rec *record.Record, column string, p params) (any, error) {
	v := rec.Get(column)
	pairs := paramPairs(p, "formats")
	if len(pairs) == 0 {
		return v, nil
	}

	// A cell that is already a time needs no parsing; render it with the
	// first target layout.
	if t, ok := v.(time.Time); ok {
		target, _ := pairs[0].value.(string)
		return t.Format(target), nil
	}

	s := record.Stringify(v)
	for _, pair := range pairs {
		t, err := time.Parse(pair.key, s)
		if err != nil {
			continue
		}
		target, _ := pair.value.(string)
		return t.Format(target), nil
	}
	return v, nil
}
