package modules

import (
	"context"

	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/helper"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// File ensures a path exists (or, with remove: true, does not) and
// reconciles its owner/group/mode. Grounded on
// original_source/src/modules/files/file.rs.
type File struct{}

func (File) Evaluate(h *handle.TaskHandle, args map[string]any, tm template.Mode) (task.EvaluatedTask, error) {
	pathRaw, err := rawString(args, "path")
	if err != nil {
		return task.EvaluatedTask{}, err
	}
	path, resp := h.Template.Path("path", pathRaw)
	if resp != nil {
		return task.EvaluatedTask{}, errorFromResponse(resp)
	}

	removeRaw, _ := rawStringOption(args, "remove")
	remove, resp := h.Template.BooleanOptionDefaultFalse("remove", removeRaw)
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
		Action: &fileAction{path: path, remove: remove, attrs: attrs},
		With:   with,
		And:    and,
	}, nil
}

type fileAction struct {
	path   string
	remove bool
	attrs  *helper.FileAttributes
}

func (a *fileAction) Dispatch(h *handle.TaskHandle, req module.Request) (*module.Response, error) {
	ctx := context.Background()

	switch req.Kind {
	case module.Query:
		var changes []module.Field
		_, existed, resp := h.Remote.QueryCommonFileAttributes(ctx, a.path, a.attrs, &changes)
		if resp != nil {
			return resp, nil
		}
		if !existed {
			if a.remove {
				return h.Response.Matched(), nil
			}
			return h.Response.NeedsCreation(), nil
		}
		isDir, resp := h.Remote.IsDirectory(ctx, a.path)
		if resp != nil {
			return resp, nil
		}
		if isDir {
			return h.Response.Failed(a.path + " is a directory"), nil
		}
		if a.remove {
			return h.Response.NeedsRemoval(), nil
		}
		if len(changes) == 0 {
			return h.Response.Matched(), nil
		}
		return h.Response.NeedsModification(changes), nil

	case module.Create:
		if resp := h.Remote.TouchFile(ctx, a.path); resp != nil {
			return resp, nil
		}
		if resp := h.Remote.ProcessAllCommonFileAttributes(ctx, a.path, a.attrs); resp != nil {
			return resp, nil
		}
		return h.Response.Created(), nil

	case module.Modify:
		if resp := h.Remote.ProcessCommonFileAttributes(ctx, a.path, a.attrs, req.Changes); resp != nil {
			return resp, nil
		}
		return h.Response.Modified(req.Changes), nil

	case module.Remove:
		if resp := h.Remote.DeleteFile(ctx, a.path); resp != nil {
			return resp, nil
		}
		return h.Response.Removed(), nil

	default:
		return h.Response.NotSupported(), nil
	}
}
