package burnish

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/burnish-io/burnish/internal/canon"
)

// domainRules prefixes the uid digest so the hash can never collide with a
// digest of the same bytes computed for another purpose. The version suffix
// leaves room for algorithm migration.
const domainRules = "burnish/rules/v1"

// UID returns the content hash of the ordered rule registry: SHA-1 folded
// over each registration's rule name and canonicalized (callable-free)
// parameters, in registration order, with null-byte separators.
//
// The uid is recomputed on every call, never cached, so it always reflects
// the registry's current observable content. Two pipelines with identical
// registration sequences share a uid regardless of their names; appending
// any registration changes it. Callables are excluded, so a pipeline with a
// callable filter hashes identically to the same pipeline without it — the
// uid covers serializable content only, which is also why export warns when
// callables are dropped.
func (p *Pipeline) UID() string {
	h := sha1.New()
	h.Write([]byte(domainRules))
	h.Write([]byte{0x00})
	for _, reg := range p.rules {
		clean, _ := canon.Sanitize(map[string]any(reg.params))
		data, err := canon.Marshal(map[string]any{
			"rule":   reg.rule,
			"params": clean,
		})
		if err != nil {
			// Sanitize strips everything Marshal rejects; reaching here
			// means a rule builder admitted a non-data parameter type.
			panic(fmt.Sprintf("burnish: uid over unserializable registration %q: %v", reg.rule, err))
		}
		h.Write(data)
		h.Write([]byte{0x00})
	}
	return hex.EncodeToString(h.Sum(nil))
}
