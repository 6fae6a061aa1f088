package modules

import (
	"context"
	"strings"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Shell runs a single command line, always needing execution. Its own
// failed_when/changed_when/save handling lives in the `and` block and is
// applied centrally by the fsm driver rather than here, unlike
// original_source/src/modules/commands/shell.rs which rolls its own.
// Grounded on that file.
type Shell struct{}

func (Shell) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	cmdRaw, err := rawString(args, "cmd")
	if err != nil {
		return task.EvaluatedTask{}, err
	}
	cmd, resp := h.Template.StringUnsafeForShell("cmd", cmdRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}

	unsafeRaw, _ := rawStringOption(args, "unsafe")
	var unsafeCmd bool
	if !strings.Contains(cmdRaw, "{{") {
		// No variable expansion means nothing an attacker-controlled
		// value could have smuggled in; allow the full shell grammar.
		unsafeCmd = true
	} else {
		unsafeCmd, resp = h.Template.BooleanOptionDefaultFalse("unsafe", unsafeRaw)
		if resp != nil {
			return task.EvaluatedTask{}, errorFromResponse(resp)
		}
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
		Action: &shellAction{cmd: cmd, unsafeCmd: unsafeCmd, sudo: with.Sudo},
		With:   with,
		And:    and,
	}, nil
}

type shellAction struct {
	cmd       string
	unsafeCmd bool
	sudo      *module.SudoSpec
}

func (a *shellAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	switch req.Kind {
	case module.Query:
		return h.Response.NeedsExecution(), nil
	case module.Execute:
		ctx := context.Background()
		cmd, err := h.Template.AddSudoDetails(a.cmd, a.sudo)
		if err != nil {
			return h.Response.Failed(err.Error()), nil
		}
		var result *module.CommandResult
		var resp *module.Response
		if a.unsafeCmd {
			result, resp = h.Remote.RunUnsafe(ctx, cmd, connection.Unchecked)
		} else {
			result, resp = h.Remote.Run(ctx, cmd, connection.Unchecked)
		}
		if resp != nil {
			return resp, nil
		}
		if result.Rc != 0 {
			return h.Response.CommandFailed(result), nil
		}
		return h.Response.CommandOK(result), nil
	default:
		return h.Response.NotSupported(), nil
	}
}
