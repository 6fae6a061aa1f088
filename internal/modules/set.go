package modules

import (
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Set writes vars onto the host's variable store, templating any
// top-level string values before storing them. Grounded on
// original_source/src/modules/control/set.rs.
type Set struct{}

func (Set) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	raw := rawMap(args, "vars")
	templated := make(map[string]any, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			templated[k] = v
			continue
		}
		out, resp := h.Template.StringUnsafeForShell(k, s)
		if resp != nil {
			return task.EvaluatedTask{}, errorFromResponse(resp)
		}
		templated[k] = out
	}

	with, resp := evaluatePreLogic(h, tm, rawMap(args, "with"))
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}
	and, resp := evaluatePostLogic(h, tm, rawMap(args, "and"))
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}

	return task.EvaluatedTask{
		Action: &setAction{vars: templated},
		With:   with,
		And:    and,
	}, nil
}

type setAction struct {
	vars map[string]any
}

func (a *setAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	switch req.Kind {
	case module.Query:
		return h.Response.NeedsPassive(), nil
	case module.Passive:
		for k, v := range a.vars {
			h.Host().SetVar(k, v)
		}
		return h.Response.Passive(), nil
	default:
		return h.Response.NotSupported(), nil
	}
}
