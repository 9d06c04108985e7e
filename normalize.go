package burnish

import (
	"fmt"

	"github.com/burnish-io/burnish/record"
)

// compiledRule is a registration with its filter compiled for one Apply
// invocation. Record rules carry a nil filter.
type compiledRule struct {
	reg    Registration
	spec   ruleSpec
	filter *filterSpec
}

// compile resolves every registration against the rule table and compiles
// filters once, so per-record work never re-parses a pattern.
func (p *Pipeline) compile() ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(p.rules))
	for _, reg := range p.rules {
		spec, ok := ruleTable[reg.rule]
		if !ok {
			return nil, &RuleError{Rule: reg.rule, Reason: "unknown rule"}
		}
		cr := compiledRule{reg: reg, spec: spec}
		if spec.kind == KindValue {
			f, err := reg.compileFilter()
			if err != nil {
				return nil, err
			}
			cr.filter = f
		}
		out = append(out, cr)
	}
	return out, nil
}

// normalize transforms one record through the registry: first every value
// rule in registration order, then every record rule in registration order.
//
// Within the value phase, each rule visits the record's columns in order
// and, for each allowed (column, value) pair, receives a snapshot copy of
// the record as it stands before that individual replacement. A rule
// therefore sees the cumulative effect of earlier rules and earlier columns
// of its own pass, but its write never mutates a snapshot it already
// handed out.
//
// The input record is never mutated.
func normalize(rec *record.Record, rules []compiledRule) (*record.Record, error) {
	out := rec.Clone()

	for _, cr := range rules {
		if cr.spec.kind != KindValue {
			continue
		}
		for _, column := range out.Columns() {
			value, ok := out.Lookup(column)
			if !ok {
				continue
			}
			if !cr.filter.allowed(out, column, value) {
				continue
			}
			next, err := cr.spec.value(out.Clone(), column, cr.reg.params)
			if err != nil {
				return nil, fmt.Errorf("value rule %q on column %q: %w", cr.reg.rule, column, err)
			}
			out.Set(column, next)
		}
	}

	for _, cr := range rules {
		if cr.spec.kind != KindRecord {
			continue
		}
		next, err := cr.spec.record(out.Clone(), cr.reg.params)
		if err != nil {
			return nil, fmt.Errorf("record rule %q: %w", cr.reg.rule, err)
		}
		out = next
	}

	return out, nil
}
