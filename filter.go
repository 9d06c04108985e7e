package burnish

import (
	"fmt"
	"regexp"

	"github.com/burnish-io/burnish/record"
)

// filterSpec is a value rule's compiled filter triple. All present parts
// are ANDed; an absent part imposes no constraint. Patterns are compiled
// once per Apply invocation — compilation is idempotent and never changes
// match semantics.
type filterSpec struct {
	column *regexp.Regexp
	value  *regexp.Regexp
	where  WhereFunc
}

// compileFilter builds the filter for a registration.
func (r Registration) compileFilter() (*filterSpec, error) {
	f := &filterSpec{where: r.where}
	if pat, ok := paramString(r.params, "column_filter"); ok {
		re, err := compileStartAnchored(pat)
		if err != nil {
			return nil, &RuleError{Rule: r.rule, Reason: fmt.Sprintf("column_filter: %v", err)}
		}
		f.column = re
	}
	if pat, ok := paramString(r.params, "value_filter"); ok {
		re, err := compileStartAnchored(pat)
		if err != nil {
			return nil, &RuleError{Rule: r.rule, Reason: fmt.Sprintf("value_filter: %v", err)}
		}
		f.value = re
	}
	return f, nil
}

// allowed reports whether the rule may touch (column, value). Checks
// short-circuit in the order column → value → callable.
func (f *filterSpec) allowed(rec *record.Record, column string, value any) bool {
	if f.column != nil && !f.column.MatchString(column) {
		return false
	}
	if f.value != nil && !f.value.MatchString(record.Stringify(value)) {
		return false
	}
	if f.where != nil && !f.where(rec, column) {
		return false
	}
	return true
}

// compileStartAnchored compiles pattern so it must match from the start of
// the input but not necessarily to the end.
func compileStartAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + pattern + `)`)
}
