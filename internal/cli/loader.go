package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/burnish-io/burnish"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeParseFailed = "E003" // Rule file does not parse
	ErrCodeSchema      = "E004" // Rule file violates the envelope schema
	ErrCodeBadRule     = "E005" // Unknown rule or malformed parameters
	ErrCodeApplyFailed = "E006" // Applying the pipeline failed
)

// envelopeSchema is the CUE contract a rule file must satisfy before it is
// handed to the engine. The definition is closed: unknown top-level fields
// are rejected.
const envelopeSchema = `
#Envelope: {
	name?: string
	uid?:  string
	rules: [...#Rule]
}

#Rule: {
	rule: string & !=""
	params?: {...}
}
`

// LoadError represents an error that occurred during rule-file loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRuleFile reads a YAML or JSON rule file, validates it against the
// envelope schema, and rebuilds the pipeline it describes.
func LoadRuleFile(path string) (*burnish.Pipeline, *burnish.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rule file not found: %s", path)}
		}
		return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	// YAML is a superset of JSON, so one decoder covers both file forms.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if err := validateEnvelope(raw); err != nil {
		return nil, nil, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("%s: %v", path, err)}
	}

	var env burnish.Envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	p, err := burnish.Load(&env)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeBadRule, Message: err.Error()}
	}
	return p, &env, nil
}

// validateEnvelope unifies the decoded document with the envelope schema.
func validateEnvelope(doc any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(envelopeSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling envelope schema: %w", err)
	}

	val := ctx.Encode(doc)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encoding rule file: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Envelope")).Unify(val)
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", errors.Details(err, nil))
	}
	return nil
}
