package burnish

import (
	"errors"
	"fmt"
)

// ErrEmptyName is returned when a pipeline name is set to empty text.
var ErrEmptyName = errors.New("pipeline name must be non-empty text")

// ColumnError reports a rule referencing a column that is absent from the
// record being transformed. It is fatal for that record and propagates out
// of Apply; the pipeline never validates column existence up front.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q not present in record", e.Column)
}

// RuleError reports a problem with a rule registration: an unknown rule
// name in a serialized envelope, or malformed parameters.
type RuleError struct {
	Rule   string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Reason)
}
