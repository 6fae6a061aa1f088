package modules

import (
	"context"

	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/helper"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Copy pushes a file from the playbook's files/ directory to dest
// verbatim — no templating of its contents, unlike Template. Grounded
// on original_source/src/modules/copy.rs.
type Copy struct{}

func (Copy) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
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
	srcPath, resp := h.Template.FindFilePath("src", src)
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
		Action: &copyAction{src: srcPath, dest: dest, attrs: attrs},
		With:   with,
		And:    and,
	}, nil
}

type copyAction struct {
	src   string
	dest  string
	attrs *helper.FileAttributes
}

func (a *copyAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
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
		localSum, resp := h.Local.GetSHA512(ctx, a.src, true)
		if resp != nil {
			return resp, nil
		}
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
		if resp := a.doCopy(ctx, h); resp != nil {
			return resp, nil
		}
		if resp := h.Remote.ProcessAllCommonFileAttributes(ctx, a.dest, a.attrs); resp != nil {
			return resp, nil
		}
		return h.Response.Created(), nil

	case module.Modify:
		if containsField(req.Changes, module.FieldContent) {
			if resp := a.doCopy(ctx, h); resp != nil {
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

func (a *copyAction) doCopy(ctx context.Context, h *handle.TaskHandle) *module.Response {
	return h.Remote.CopyFile(ctx, a.src, a.dest)
}

func containsField(fields []module.Field, want module.Field) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
