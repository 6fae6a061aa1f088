package modules

import (
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Assert fails the task unless every configured condition holds: true
// (default true), false (default false), all_true, all_false, some_true.
// Grounded on original_source/src/modules/control/assert.rs.
type Assert struct{}

func (Assert) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	msgRaw, _ := rawStringOption(args, "msg")
	msg, resp := h.Template.StringOption("msg", msgRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}

	trueCond := true
	if condRaw, _ := rawStringOption(args, "true"); condRaw != nil {
		var rresp *module.Response
		trueCond, rresp = h.Template.TestCondition(*condRaw)
		if rresp != nil {
			return task.EvaluatedTask{}, errorFromResponse(rresp)
		}
	}

	falseCond := false
	if condRaw, _ := rawStringOption(args, "false"); condRaw != nil {
		var rresp *module.Response
		falseCond, rresp = h.Template.TestCondition(*condRaw)
		if rresp != nil {
			return task.EvaluatedTask{}, errorFromResponse(rresp)
		}
	}

	allTrue, resp := evalCondList(h, args, "all_true", true)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}
	allFalse, resp := evalCondList(h, args, "all_false", false)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}
	someTrue, resp := evalCondList(h, args, "some_true", true)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
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
		Action: &assertAction{
			msg:      msg,
			trueVal:  trueCond,
			falseVal: falseCond,
			allTrue:  allTrue,
			allFalse: allFalse,
			someTrue: someTrue,
		},
		With: with,
		And:  and,
	}, nil
}

// evalCondList templates each item of an optional list of conditions,
// defaulting to a single-element list holding def when the field is absent.
func evalCondList(h *handle.TaskHandle, args map[string]any, key string, def bool) ([]bool, *module.Response) {
	items, err := rawStringList(args, key)
	if err != nil || items == nil {
		return []bool{def}, nil
	}
	out := make([]bool, 0, len(items))
	for _, item := range items {
		v, resp := h.Template.TestCondition(item)
		if resp != nil {
			return nil, resp
		}
		out = append(out, v)
	}
	return out, nil
}

type assertAction struct {
	msg      *string
	trueVal  bool
	falseVal bool
	allTrue  []bool
	allFalse []bool
	someTrue []bool
}

func (a *assertAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	switch req.Kind {
	case module.Query:
		return h.Response.NeedsPassive(), nil
	case module.Passive:
		fail := !a.trueVal || a.falseVal || anyIs(a.allTrue, false) || anyIs(a.allFalse, true) || !anyIs(a.someTrue, true)
		if fail {
			msg := "assertion failed"
			if a.msg != nil {
				msg = "assertion failed: " + *a.msg
			}
			return h.Response.Failed(msg), nil
		}
		return h.Response.Passive(), nil
	default:
		return h.Response.NotSupported(), nil
	}
}

func anyIs(values []bool, want bool) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
