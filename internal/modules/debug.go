package modules

import (
	"fmt"
	"sort"
	"strings"

	pctx "github.com/ormasoftchile/jetforge/internal/context"
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Debug prints the host's blended variables (or a named subset of them)
// through the visitor's debug sink. Grounded on
// original_source/src/modules/control/debug.rs.
type Debug struct{}

func (Debug) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	vars, err := rawStringList(args, "vars")
	if err != nil {
		return task.EvaluatedTask{}, err
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
		Action: &debugAction{vars: vars},
		With:   with,
		And:    and,
	}, nil
}

type debugAction struct {
	vars []string
}

func (a *debugAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	switch req.Kind {
	case module.Query:
		return h.Response.NeedsPassive(), nil
	case module.Passive:
		blended := h.Context().Blend(h.Host().Name(), pctx.NotTemplateModule)
		keys := make([]string, 0, len(blended))
		for k := range blended {
			if k == "item" {
				continue
			}
			if len(a.vars) > 0 && !contains(a.vars, k) {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, blended[k])
		}
		h.Debug(b.String())
		return h.Response.Passive(), nil
	default:
		return h.Response.NotSupported(), nil
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
