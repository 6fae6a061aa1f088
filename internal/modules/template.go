package modules

import (
	"context"
	"crypto/sha512"
	"fmt"

	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/helper"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Template renders src (a playbook templates/ file, blended against the
// TemplateModule target so ENV_* secrets are in scope) and writes the
// result to dest. Grounded on original_source/src/modules/template.rs.
type Template struct{}

func (Template) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	srcRaw, err := rawString(args, "src")
	if err != nil {
		return task.EvaluatedTask{}, err
	}
	destRaw, err := rawString(args, "dest")
	if err != nil {
		return task.EvaluatedTask{}, err
	}

	src, resp := h.Template.StringUnsafeForShell("src", srcRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}
	srcPath, resp := h.Template.FindTemplatePath("src", src)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}
	dest, resp := h.Template.Path("dest", destRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}

	attrs, resp := evaluateFileAttributes(h, tm, rawMap(args, "attributes"))
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
		Action: &templateAction{src: srcPath, dest: dest, attrs: attrs},
		With:   with,
		And:    and,
	}, nil
}

type templateAction struct {
	src   string
	dest  string
	attrs *helper.FileAttributes
}

// render reads src from the controller and blends it, with access to
// ENV_* variables — the one use of StringForTemplateModuleUseOnly this
// engine permits.
func (a *templateAction) render(h *handle.TaskHandle) (string, *module.Response) {
	contents, resp := h.Local.ReadFile(a.src)
	if resp != nil {
		return "", resp
	}
	return h.Template.StringForTemplateModuleUseOnly("src", contents)
}

func (a *templateAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	ctx := context.Background()

	switch req.Kind {
	case module.Query:
		var changes []module.Field
		_, existed, resp := h.Remote.QueryCommonFileAttributes(ctx, a.dest, a.attrs, &changes)
		if resp != nil {
			return resp, nil
		}
		if !existed {
			return h.Response.NeedsCreation(), nil
		}
		data, resp := a.render(h)
		if resp != nil {
			return resp, nil
		}
		localSum := fmt.Sprintf("%x", sha512.Sum512([]byte(data)))
		remoteSum, resp := h.Remote.GetSHA512(ctx, a.dest)
		if resp != nil {
			return resp, nil
		}
		if remoteSum != localSum {
			changes = append(changes, module.FieldContent)
		}
		if len(changes) == 0 {
			return h.Response.Matched(), nil
		}
		return h.Response.NeedsModification(changes), nil

	case module.Create:
		data, resp := a.render(h)
		if resp != nil {
			return resp, nil
		}
		if resp := h.Remote.WriteData(ctx, []byte(data), a.dest); resp != nil {
			return resp, nil
		}
		if resp := h.Remote.ProcessAllCommonFileAttributes(ctx, a.dest, a.attrs); resp != nil {
			return resp, nil
		}
		return h.Response.Created(), nil

	case module.Modify:
		if containsField(req.Changes, module.FieldContent) {
			data, resp := a.render(h)
			if resp != nil {
				return resp, nil
			}
			if resp := h.Remote.WriteData(ctx, []byte(data), a.dest); resp != nil {
				return resp, nil
			}
		}
		if resp := h.Remote.ProcessCommonFileAttributes(ctx, a.dest, a.attrs, req.Changes); resp != nil {
			return resp, nil
		}
		return h.Response.Modified(req.Changes), nil

	default:
		return h.Response.NotSupported(), nil
	}
}
