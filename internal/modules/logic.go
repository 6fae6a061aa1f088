package modules

import (
	"strconv"

	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// evaluatePreLogic templates a task's `with` block (cond, sudo,
// subscribe), grounded on original_source's PreLogicInput::template
// pattern every module's evaluate leg calls before building its Action.
func evaluatePreLogic(h *handle.TaskHandle, tm template.Mode, raw map[string]any) (module.PreLogic, *module.Response) {
	if raw == nil {
		return module.PreLogic{}, nil
	}
	var out module.PreLogic

	if condRaw, ok := raw["cond"].(string); ok && condRaw != "" {
		cond, resp := h.Template.StringUnsafeForShell("with.cond", condRaw)
		if resp != nil {
			return out, resp
		}
		out.Cond = cond
	}
	if subRaw, ok := raw["subscribe"].(string); ok && subRaw != "" {
		sub, resp := h.Template.String("with.subscribe", subRaw)
		if resp != nil {
			return out, resp
		}
		out.Subscribe = sub
	}
	if sudoRaw, ok := raw["sudo"].(map[string]any); ok {
		user, resp := h.Template.StringNoSpaces("with.sudo.user", stringOrEmpty(sudoRaw["user"]))
		if resp != nil {
			return out, resp
		}
		tmpl := stringOrEmpty(sudoRaw["template"])
		if tmpl == "" {
			tmpl = "sudo -u {{ jet_sudo_user }} sh -c '{{ jet_command }}'"
		}
		out.Sudo = &module.SudoSpec{User: user, Template: tmpl}
	}
	return out, nil
}

// evaluatePostLogic templates a task's `and` block (changed_when,
// failed_when, delay, retry, ignore_errors, notify, save), grounded on
// original_source's PostLogicInput::template pattern.
func evaluatePostLogic(h *handle.TaskHandle, tm template.Mode, raw map[string]any) (module.PostLogic, *module.Response) {
	if raw == nil {
		return module.PostLogic{}, nil
	}
	var out module.PostLogic

	if s, ok := raw["changed_when"].(string); ok && s != "" {
		v, resp := h.Template.StringUnsafeForShell("and.changed_when", s)
		if resp != nil {
			return out, resp
		}
		out.ChangedWhen = v
	}
	if s, ok := raw["failed_when"].(string); ok && s != "" {
		v, resp := h.Template.StringUnsafeForShell("and.failed_when", s)
		if resp != nil {
			return out, resp
		}
		out.FailedWhen = v
	}
	if s, ok := raw["notify"].(string); ok && s != "" {
		v, resp := h.Template.String("and.notify", s)
		if resp != nil {
			return out, resp
		}
		out.Notify = v
	}
	if s, ok := raw["save"].(string); ok && s != "" {
		v, resp := h.Template.StringNoSpaces("and.save", s)
		if resp != nil {
			return out, resp
		}
		out.Save = v
	}
	if delayStr := stringOrEmpty(raw["delay"]); delayStr != "" {
		n, resp := h.Template.Integer("and.delay", delayStr)
		if resp != nil {
			return out, resp
		}
		out.Delay = n
	}
	if retryStr := stringOrEmpty(raw["retry"]); retryStr != "" {
		n, resp := h.Template.Integer("and.retry", retryStr)
		if resp != nil {
			return out, resp
		}
		out.Retry = n
	}
	if b, ok := raw["ignore_errors"].(bool); ok {
		out.IgnoreErrors = b
	}
	return out, nil
}

// stringOrEmpty coerces a raw YAML-decoded value (string, int, bool, or
// nil) to its string form so template.* helpers — which operate on
// pre-render strings — can consume fields that YAML may have decoded as
// a native scalar type (e.g. `delay: 5` instead of `delay: "5"`).
func stringOrEmpty(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.Itoa(int(t))
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
