package validate

import (
	"github.com/ormasoftchile/jetforge/internal/errs"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/loader"
)

// Playbook runs the semantic and domain phases over an already
// structurally-decoded playbook (internal/loader has already run phase
// one by the time a PlaybookFile exists). inv may be nil when validating
// syntax only, in which case group-existence checks are skipped.
func Playbook(pb loader.PlaybookFile, inv *inventory.Inventory) []*errs.ParseError {
	var out []*errs.ParseError
	out = append(out, Semantic(pb)...)
	out = append(out, Domain(pb, inv)...)
	return out
}
