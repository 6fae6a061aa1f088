// Package task ties the module contract (internal/module) to the
// per-(host,task) facade (internal/handle) without either of those
// packages depending on each other: handle needs module's Response type
// to build responses, and a Module's Dispatch needs a concrete
// *handle.TaskHandle — a cycle if either package named the other's
// interface. This package sits above both and is imported by neither.
package task

import (
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// EvaluatedTask is what a module's Evaluate leg hands back to the FSM
// driver: the typed action to dispatch against, plus the task's
// templated `with`/`and` blocks.
type EvaluatedTask struct {
	Action Action
	With   module.PreLogic
	And    module.PostLogic
}

// Module evaluates a task's raw (not yet templated) arguments into an
// EvaluatedTask, rendering them through the handle's Template facet. tm selects Strict (real run) or Off (syntax-only scan, no
// connection ever exercised for real) rendering.
type Module interface {
	Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (EvaluatedTask, error)
}

// Action is the typed, already-evaluated operation the FSM drives through
// Validate/Query/{Create|Modify|Remove|Execute|Passive}. Dispatch is called
// once per legal transition the FSM selects; it is never called for a
// transition module.CheckLegal would reject.
type Action interface {
	Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error)
}
