// Package fsm drives one task through Validate (folded into the module's
// Evaluate leg) then Query and, if needed, exactly one of
// Create/Modify/Remove/Execute/Passive, for a single (host, task) pair.
// Grounded on original_source/src/playbooks/task_fsm.rs's
// fsm_run_task/run_task_on_host.
package fsm

import (
	"context"
	"errors"
	"time"

	"github.com/ormasoftchile/jetforge/internal/connection"
	pctx "github.com/ormasoftchile/jetforge/internal/context"
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/handlers"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
	"github.com/ormasoftchile/jetforge/internal/visitor"
)

// TaskSpec is everything RunHostTask needs about the task being run that
// does not come from the host or the shared context.
type TaskSpec struct {
	Mode       handlers.Mode
	Args       map[string]any
	SyntaxOnly bool
}

// Outcome is what RunHostTask reports back to the per-play runner.
type Outcome struct {
	Status  module.Status
	Message string
	// Fatal is set only when a module returned a status illegal for the
	// request kind it was given — a programmer bug in the module, not a
	// normal host failure. The runner must abort the run on a Fatal
	// outcome rather than simply mark the host failed.
	Fatal error
}

// Failed reports whether this outcome should remove its host from the
// remaining set for the rest of the run.
func (o Outcome) Failed() bool {
	return o.Status == module.Failed
}

// RunHostTask evaluates and, unless skipped, dispatches mod against host.
// Check-mode (visitor.IsCheckMode()) still runs the Query leg for real but
// synthesizes the mutating leg's response instead of dispatching it.
func RunHostTask(ctx context.Context, pc *pctx.PlaybookContext, v visitor.Visitor, factory *connection.Factory, host *inventory.Host, mod task.Module, spec TaskSpec) Outcome {
	tm := template.Strict
	if spec.SyntaxOnly {
		tm = template.Off
	}

	var conn connection.Connection
	if spec.SyntaxOnly {
		conn = connection.NewNoOp(host)
	} else {
		conn = factory.Connection(host)
	}

	h := handle.New(pc, v, factory, host, conn, tm)

	evaluated, err := mod.Evaluate(h, spec.Args, tm)
	if err != nil {
		return Outcome{Status: module.Failed, Message: err.Error()}
	}

	// A syntax-only scan never dispatches anything; it exists to catch
	// evaluate-time errors and the one semantic rule that only evaluate
	// can see: a handler task must declare what it subscribes to.
	if spec.SyntaxOnly {
		if spec.Mode == handlers.Handlers && evaluated.With.Subscribe == "" {
			return Outcome{Status: module.Failed, Message: "with/subscribe missing in handler task definition"}
		}
		return Outcome{Status: module.IsMatched}
	}

	if spec.Mode == handlers.Handlers {
		if !handlers.ShouldRun(host, pc.PlayCounter(), evaluated.With.Subscribe) {
			return Outcome{Status: module.IsSkipped}
		}
	}
	if evaluated.With.Cond != "" {
		ok, resp := h.Template.TestCondition(evaluated.With.Cond)
		if resp != nil {
			return Outcome{Status: module.Failed, Message: resp.Message}
		}
		if !ok {
			return Outcome{Status: module.IsSkipped}
		}
	}

	modifyMode := !v.IsCheckMode()

	result, err := dispatchWithRetry(ctx, h, evaluated, modifyMode)
	if err != nil {
		var violation *module.ContractViolationError
		if errors.As(err, &violation) {
			return Outcome{Status: module.Failed, Fatal: violation}
		}
		return Outcome{Status: module.Failed, Message: err.Error()}
	}

	if result.Status == module.Failed && evaluated.And.IgnoreErrors {
		result = &module.Response{Status: module.IsSkipped, Message: result.Message}
	}

	if evaluated.And.Save != "" && result.Command != nil {
		host.SetVar(evaluated.And.Save, map[string]any{
			"rc":     result.Command.Rc,
			"stdout": result.Command.Stdout,
		})
	}

	if spec.Mode == handlers.NormalTasks && isMutatingSuccess(result.Status) && evaluated.And.Notify != "" {
		handlers.Record(host, pc.PlayCounter(), evaluated.And.Notify)
		v.OnHandlerNotified(host.Name(), evaluated.And.Notify)
	}

	return Outcome{Status: result.Status, Message: result.Message}
}

func isMutatingSuccess(s module.Status) bool {
	switch s {
	case module.IsCreated, module.IsModified, module.IsRemoved, module.IsExecuted:
		return true
	default:
		return false
	}
}

// dispatchWithRetry drives one Query leg to its terminal status, applying
// and.changed_when/and.failed_when overrides and retrying and.retry times,
// and.delay seconds apart, while the result is Failed. task_fsm.rs leaves
// this step as a literal "apply post-logic here" FIXME; module.PostLogic's
// fields are part of the contract regardless, so the driver implements them.
func dispatchWithRetry(ctx context.Context, h *handle.TaskHandle, evaluated task.EvaluatedTask, modifyMode bool) (*module.Response, error) {
	attempts := evaluated.And.Retry + 1
	if attempts < 1 {
		attempts = 1
	}
	var resp *module.Response
	for attempt := 0; attempt < attempts; attempt++ {
		var err error
		resp, err = dispatchOnce(h, evaluated, modifyMode)
		if err != nil {
			return nil, err
		}
		resp = applyPostLogic(h, evaluated.And, resp)
		if resp.Status != module.Failed {
			return resp, nil
		}
		if attempt < attempts-1 && evaluated.And.Delay > 0 {
			select {
			case <-ctx.Done():
				return resp, nil
			case <-time.After(time.Duration(evaluated.And.Delay) * time.Second):
			}
		}
	}
	return resp, nil
}

func applyPostLogic(h *handle.TaskHandle, post module.PostLogic, resp *module.Response) *module.Response {
	if resp.Status == module.Failed {
		return resp
	}
	if post.FailedWhen != "" {
		failed, fresp := h.Template.TestCondition(post.FailedWhen)
		if fresp != nil {
			return fresp
		}
		if failed {
			return &module.Response{Status: module.Failed, Message: "failed_when condition met"}
		}
	}
	if post.ChangedWhen != "" && isMutatingSuccess(resp.Status) {
		changed, cresp := h.Template.TestCondition(post.ChangedWhen)
		if cresp != nil {
			return cresp
		}
		if !changed {
			return &module.Response{Status: module.IsMatched}
		}
	}
	return resp
}

// dispatchOnce runs the Query leg and, if it calls for one, exactly one
// mutating leg, validating each dispatch's status against module.CheckLegal.
func dispatchOnce(h *handle.TaskHandle, evaluated task.EvaluatedTask, modifyMode bool) (*module.Response, error) {
	query, err := evaluated.Action.Dispatch(h, module.Request{Kind: module.Query})
	if err != nil {
		return nil, err
	}
	if violation := module.CheckLegal("task", module.Query, query); violation != nil {
		return nil, violation
	}
	if query.Status == module.Failed {
		return query, nil
	}

	var final *module.Response
	switch query.Status {
	case module.IsMatched:
		final = query
	case module.NeedsCreation:
		final, err = actOrPredict(h, evaluated, modifyMode, module.Create, module.IsCreated)
	case module.NeedsRemoval:
		final, err = actOrPredict(h, evaluated, modifyMode, module.Remove, module.IsRemoved)
	case module.NeedsExecution:
		final, err = actOrPredict(h, evaluated, modifyMode, module.Execute, module.IsExecuted)
	case module.NeedsPassive:
		final, err = actOrPredict(h, evaluated, modifyMode, module.Passive, module.IsPassive)
	case module.NeedsModification:
		final, err = actOrPredictModify(h, evaluated, modifyMode, query.Changes)
	default:
		return nil, &module.ContractViolationError{Module: "task", Kind: module.Query, Status: query.Status}
	}
	if err != nil {
		return nil, err
	}
	if final.Status == module.IsModified && len(final.Changes) == 0 {
		final.Changes = query.Changes
	}
	return final, nil
}

// actOrPredict dispatches kind for real in modify mode, or synthesizes the
// expected success status in check mode without touching the host.
func actOrPredict(h *handle.TaskHandle, evaluated task.EvaluatedTask, modifyMode bool, kind module.RequestKind, want module.Status) (*module.Response, error) {
	if !modifyMode {
		return &module.Response{Status: want}, nil
	}
	resp, err := evaluated.Action.Dispatch(h, module.Request{Kind: kind})
	if err != nil {
		return nil, err
	}
	if violation := module.CheckLegal("task", kind, resp); violation != nil {
		return nil, violation
	}
	return resp, nil
}

func actOrPredictModify(h *handle.TaskHandle, evaluated task.EvaluatedTask, modifyMode bool, changes []module.Field) (*module.Response, error) {
	if !modifyMode {
		return &module.Response{Status: module.IsModified, Changes: changes}, nil
	}
	resp, err := evaluated.Action.Dispatch(h, module.Request{Kind: module.Modify, Changes: changes})
	if err != nil {
		return nil, err
	}
	if violation := module.CheckLegal("task", module.Modify, resp); violation != nil {
		return nil, violation
	}
	return resp, nil
}
