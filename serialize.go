package burnish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/burnish-io/burnish/internal/canon"
)

// RuleEntry is the portable form of a single registration: the rule name
// and its JSON-shaped parameters.
type RuleEntry struct {
	Rule   string         `json:"rule" yaml:"rule"`
	Params map[string]any `json:"params" yaml:"params"`
}

// Envelope is the portable form of a whole pipeline. UID is the identity
// recorded at export time; Load recomputes it from Rules and warns on
// mismatch rather than failing.
type Envelope struct {
	Name  string      `json:"name" yaml:"name"`
	UID   string      `json:"uid" yaml:"uid"`
	Rules []RuleEntry `json:"rules" yaml:"rules"`
}

// Export renders the pipeline as an envelope. The name follows Name(): an
// unnamed pipeline exports its uid. Callable parameters (column filters,
// value producers) cannot travel; they are dropped from the exported params
// with a warning, so a round-tripped pipeline may carry fewer constraints
// than the original.
func (p *Pipeline) Export() *Envelope {
	env := &Envelope{
		Name:  p.Name(),
		UID:   p.UID(),
		Rules: make([]RuleEntry, 0, len(p.rules)),
	}
	for _, reg := range p.rules {
		params := map[string]any{}
		dropped := reg.where != nil
		for k, v := range reg.params {
			clean, d := canon.Sanitize(v)
			if d {
				dropped = true
				if clean == nil {
					continue // param was itself a callable
				}
			}
			params[k] = clean
		}
		if dropped {
			slog.Warn("callable parameter dropped from export",
				"pipeline", p.displayName(), "rule", reg.rule)
		}
		env.Rules = append(env.Rules, RuleEntry{Rule: reg.rule, Params: params})
	}
	return env
}

// ExportFile writes the envelope to path as indented JSON. The parent
// directory must already exist.
func (p *Pipeline) ExportFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p.Export()); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load rebuilds a pipeline from an envelope. Every entry must name a known
// rule and satisfy that rule's parameter contract. A UID in the envelope
// that disagrees with the recomputed identity is logged, not fatal: it
// usually means callables were dropped at export time.
func Load(env *Envelope) (*Pipeline, error) {
	p := New()
	for i, entry := range env.Rules {
		spec, ok := ruleTable[entry.Rule]
		if !ok {
			return nil, &RuleError{Rule: entry.Rule, Reason: "unknown rule"}
		}
		params := entry.Params
		if params == nil {
			params = map[string]any{}
		}
		if spec.check != nil {
			if err := spec.check(params); err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, entry.Rule, err)
			}
		}
		reg := Registration{rule: entry.Rule, kind: spec.kind, params: params}
		p.warnIfUnscopedDate(reg)
		p.rules = append(p.rules, reg)
	}
	// An envelope name that is just the uid fallback of an unnamed export
	// is not an explicit name; setting it would freeze the fallback.
	if env.Name != "" && env.Name != p.UID() {
		if err := p.SetName(env.Name); err != nil {
			return nil, err
		}
	}
	if env.UID != "" && env.UID != p.UID() {
		slog.Warn("pipeline identity mismatch on load",
			"pipeline", p.displayName(), "recorded", env.UID, "computed", p.UID())
	}
	return p, nil
}

// LoadFile reads a JSON envelope written by ExportFile and rebuilds the
// pipeline.
func LoadFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	p, err := Load(&env)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}
