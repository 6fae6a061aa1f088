package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// SDService reconciles a systemd unit's enabled/started state and
// supports a one-shot restart. Grounded on
// original_source/src/modules/services/sd_service.rs.
type SDService struct{}

func (SDService) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	serviceRaw, err := rawString(args, "service")
	if err != nil {
		return task.EvaluatedTask{}, err
	}
	service, resp := h.Template.StringNoSpaces("service", serviceRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}

	enabledRaw, _ := rawStringOption(args, "enabled")
	enabled, resp := h.Template.BooleanOptionDefaultNone("enabled", enabledRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}
	startedRaw, _ := rawStringOption(args, "started")
	started, resp := h.Template.BooleanOptionDefaultNone("started", startedRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}
	restartRaw, _ := rawStringOption(args, "restart")
	restart, resp := h.Template.BooleanOptionDefaultFalse("restart", restartRaw)
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
		Action: &sdServiceAction{service: service, enabled: enabled, started: started, restart: restart},
		With:   with,
		And:    and,
	}, nil
}

type sdServiceAction struct {
	service string
	enabled *bool
	started *bool
	restart bool
}

type serviceDetails struct {
	enabled bool
	started bool
}

func (a *sdServiceAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	ctx := context.Background()

	switch req.Kind {
	case module.Query:
		actual, resp := a.getServiceDetails(ctx, h)
		if resp != nil {
			return resp, nil
		}
		var changes []module.Field

		switch {
		case actual.enabled && a.enabled != nil && !*a.enabled:
			changes = append(changes, module.FieldDisable)
		case !actual.enabled && a.enabled != nil && *a.enabled:
			changes = append(changes, module.FieldEnable)
		}

		switch {
		case a.started != nil && !*a.started && a.restart:
			return h.Response.Failed("started:false and restart:true conflict"), nil
		case actual.started && a.started != nil && *a.started && a.restart:
			changes = append(changes, module.FieldRestart)
		case actual.started && a.started == nil && a.restart:
			changes = append(changes, module.FieldRestart)
		case !actual.started && a.started == nil && a.restart:
			changes = append(changes, module.FieldStart)
		case !actual.started && a.started != nil && *a.started:
			changes = append(changes, module.FieldStart)
		case actual.started && a.started != nil && !*a.started && !a.restart:
			changes = append(changes, module.FieldStop)
		}

		if len(changes) == 0 {
			return h.Response.Matched(), nil
		}
		return h.Response.NeedsModification(changes), nil

	case module.Modify:
		switch {
		case containsField(req.Changes, module.FieldStart):
			if resp := a.run(ctx, h, "start"); resp != nil {
				return resp, nil
			}
		case containsField(req.Changes, module.FieldStop):
			if resp := a.run(ctx, h, "stop"); resp != nil {
				return resp, nil
			}
		case containsField(req.Changes, module.FieldRestart):
			if resp := a.run(ctx, h, "restart"); resp != nil {
				return resp, nil
			}
		}
		switch {
		case containsField(req.Changes, module.FieldEnable):
			if resp := a.run(ctx, h, "enable"); resp != nil {
				return resp, nil
			}
		case containsField(req.Changes, module.FieldDisable):
			if resp := a.run(ctx, h, "disable"); resp != nil {
				return resp, nil
			}
		}
		return h.Response.Modified(req.Changes), nil

	default:
		return h.Response.NotSupported(), nil
	}
}

func (a *sdServiceAction) getServiceDetails(ctx context.Context, h *handle.TaskHandle) (serviceDetails, *module.Response) {
	var details serviceDetails

	enabledResult, resp := h.Remote.Run(ctx, fmt.Sprintf("systemctl is-enabled '%s'", a.service), connection.Unchecked)
	if resp != nil {
		return details, resp
	}
	switch {
	case strings.Contains(enabledResult.Stdout, "disabled"), strings.Contains(enabledResult.Stdout, "deactivating"):
		details.enabled = false
	case strings.Contains(enabledResult.Stdout, "enabled"), strings.Contains(enabledResult.Stdout, "alias"):
		details.enabled = true
	default:
		return details, h.Response.Failed(fmt.Sprintf("systemctl status unexpected for service(%s): %s", a.service, enabledResult.Stdout))
	}

	activeResult, resp := h.Remote.Run(ctx, fmt.Sprintf("systemctl is-active '%s'", a.service), connection.Unchecked)
	if resp != nil {
		return details, resp
	}
	switch {
	case strings.Contains(activeResult.Stdout, "inactive"):
		details.started = false
	case strings.Contains(activeResult.Stdout, "active"):
		details.started = true
	default:
		return details, h.Response.Failed(fmt.Sprintf("systemctl status unexpected for service(%s): %s", a.service, activeResult.Stdout))
	}

	return details, nil
}

func (a *sdServiceAction) run(ctx context.Context, h *handle.TaskHandle, verb string) *module.Response {
	_, resp := h.Remote.Run(ctx, fmt.Sprintf("systemctl %s '%s'", verb, a.service), connection.Checked)
	return resp
}
