package modules

import (
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Fail always fails, carrying msg (or a default message) as the reason.
// Grounded on original_source/src/modules/control/fail.rs.
type Fail struct{}

func (Fail) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	msgRaw, _ := rawStringOption(args, "msg")
	msg, resp := h.Template.StringOption("msg", msgRaw)
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
		Action: &failAction{msg: msg},
		With:   with,
		And:    and,
	}, nil
}

type failAction struct {
	msg *string
}

func (a *failAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	switch req.Kind {
	case module.Query:
		return h.Response.NeedsPassive(), nil
	case module.Passive:
		msg := "fail invoked"
		if a.msg != nil {
			msg = *a.msg
		}
		return h.Response.Failed(msg), nil
	default:
		return h.Response.NotSupported(), nil
	}
}
