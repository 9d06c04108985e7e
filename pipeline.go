// Package burnish is a fluent rule-chaining engine for normalizing
// table-shaped data. A Pipeline accumulates an ordered registry of
// transformation rules; applying it streams records from an input table,
// rewrites each record through the registry, and writes the result out.
//
// Rules come in two kinds. Value rules rewrite one column's value and are
// gated by optional filters (column pattern, value pattern, callable
// predicate). Record rules rewrite the whole record and take no filters.
// For every record, all value rules run first and then all record rules,
// each phase in registration order.
//
// A pipeline's identity is a content hash (uid) of its ordered registry.
// Two pipelines are equal iff their uids are equal, and the registry can be
// exported to and reloaded from a transportable envelope.
//
//	p := burnish.New().
//		Strip(burnish.Columns(`^name$`)).
//		Increment(burnish.Amount(1), burnish.Columns(`^count$`)).
//		RenameColumns(burnish.Pairs{{"name", "full_name"}})
//	out, err := p.Apply(ctx, "people.csv", "people.burnished.csv")
package burnish

import (
	"fmt"
)

// Pipeline is an append-only, ordered registry of rule invocations plus an
// optional descriptive name. The zero-and-grow lifecycle is: construct
// empty, register rules (each builder returns the same instance), then
// Apply any number of times. Apply never consumes the pipeline.
//
// The registry is safe for concurrent read-only iteration; nothing mutates
// it during Apply. Registering rules concurrently with Apply is not
// supported.
type Pipeline struct {
	name  string
	rules []Registration
}

// New returns an empty, unnamed pipeline. Until a name is set, Name()
// tracks the uid of the registry.
func New() *Pipeline {
	return &Pipeline{}
}

// Named returns an empty pipeline with a descriptive name.
// Panics if name is empty; use New plus SetName to handle the error.
func Named(name string) *Pipeline {
	p := New()
	if err := p.SetName(name); err != nil {
		panic(err)
	}
	return p
}

// Name returns the explicit name when one has been set, else the current
// uid. An unnamed pipeline's apparent name therefore changes as rules are
// registered; once a name is set it never reverts.
func (p *Pipeline) Name() string {
	if p.name != "" {
		return p.name
	}
	return p.UID()
}

// SetName assigns the descriptive name. Empty text is rejected.
func (p *Pipeline) SetName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	p.name = name
	return nil
}

// displayName is the name for log attribution, without forcing a uid
// computation on unnamed pipelines.
func (p *Pipeline) displayName() string {
	if p.name != "" {
		return p.name
	}
	return "(unnamed)"
}

// Rules returns the full ordered registration sequence.
// The slice is a copy; registrations themselves are immutable.
func (p *Pipeline) Rules() []Registration {
	out := make([]Registration, len(p.rules))
	copy(out, p.rules)
	return out
}

// ValueRules returns the value-kind registrations in registration order.
func (p *Pipeline) ValueRules() []Registration {
	return p.rulesOfKind(KindValue)
}

// RecordRules returns the record-kind registrations in registration order.
func (p *Pipeline) RecordRules() []Registration {
	return p.rulesOfKind(KindRecord)
}

func (p *Pipeline) rulesOfKind(k Kind) []Registration {
	var out []Registration
	for _, reg := range p.rules {
		if reg.kind == k {
			out = append(out, reg)
		}
	}
	return out
}

// Equal reports whether two pipelines carry the same observable registry
// content. Names are not part of identity.
func (p *Pipeline) Equal(o *Pipeline) bool {
	if o == nil {
		return false
	}
	return p.UID() == o.UID()
}

// String includes the assigned name, so two equal pipelines can still
// render differently.
func (p *Pipeline) String() string {
	return fmt.Sprintf("<Pipeline (%d rules) %q>", len(p.rules), p.Name())
}
