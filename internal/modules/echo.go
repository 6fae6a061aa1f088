package modules

import (
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Echo prints a templated message through the visitor's debug sink.
// original_source/src/modules/echo.rs is a stub (license header and
// imports only); this follows the same evaluate/dispatch shape as
// control/debug.rs, the nearest complete sibling.
type Echo struct{}

func (Echo) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	msgRaw, err := rawString(args, "msg")
	if err != nil {
		return task.EvaluatedTask{}, err
	}
	msg, resp := h.Template.StringUnsafeForShell("msg", msgRaw)
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
		Action: &echoAction{msg: msg},
		With:   with,
		And:    and,
	}, nil
}

type echoAction struct {
	msg string
}

func (a *echoAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	switch req.Kind {
	case module.Query:
		return h.Response.NeedsPassive(), nil
	case module.Passive:
		h.Debug(a.msg)
		return h.Response.Passive(), nil
	default:
		return h.Response.NotSupported(), nil
	}
}
