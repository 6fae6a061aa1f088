package validate

import (
	"fmt"

	"github.com/ormasoftchile/jetforge/internal/errs"
	"github.com/ormasoftchile/jetforge/internal/helper"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/loader"
	"github.com/ormasoftchile/jetforge/internal/modules"
)

// Domain runs the custom, Go-native rules that a JSON Schema can't
// express: every task names a registered module, referenced groups exist
// in inv, every task's and.notify target names an actual handler
// somewhere in scope, and literal mode strings are valid octal
// (helper.IsOctalString), all checked before any connection opens.
func Domain(pb loader.PlaybookFile, inv *inventory.Inventory) []*errs.ParseError {
	var out []*errs.ParseError

	for pi, play := range pb.Plays {
		for _, g := range play.Groups {
			if inv != nil && inv.Group(g) == nil {
				out = append(out, &errs.ParseError{Phase: "domain", Path: fmt.Sprintf("plays[%d].groups", pi), Err: fmt.Errorf("unknown group %q", g)})
			}
		}
		if play.SSHPort < 0 || play.SSHPort > 65535 {
			out = append(out, &errs.ParseError{Phase: "domain", Path: fmt.Sprintf("plays[%d].ssh_port", pi), Err: fmt.Errorf("port %d out of range", play.SSHPort)})
		}
		if play.BatchSize < 0 {
			out = append(out, &errs.ParseError{Phase: "domain", Path: fmt.Sprintf("plays[%d].batch_size", pi), Err: fmt.Errorf("batch_size must be >= 0, got %d", play.BatchSize)})
		}

		handlerNames := make(map[string]bool, len(play.Handlers))
		for _, h := range play.Handlers {
			handlerNames[h.Name] = true
		}

		for ri, roleName := range play.Roles {
			role, err := loader.LoadRole(pb.Dir, roleName)
			if err != nil {
				out = append(out, asParseError(err, fmt.Sprintf("plays[%d].roles[%d]", pi, ri)))
				continue
			}
			for _, h := range role.Handlers {
				handlerNames[h.Name] = true
			}
			out = append(out, validateTasks(role.Tasks, fmt.Sprintf("plays[%d].roles[%d].tasks", pi, ri))...)
			out = append(out, validateTasks(role.Handlers, fmt.Sprintf("plays[%d].roles[%d].handlers", pi, ri))...)
		}

		out = append(out, validateTasks(play.Tasks, fmt.Sprintf("plays[%d].tasks", pi))...)
		out = append(out, validateTasks(play.Handlers, fmt.Sprintf("plays[%d].handlers", pi))...)
		out = append(out, validateNotifyTargets(play.Tasks, handlerNames, fmt.Sprintf("plays[%d].tasks", pi))...)
	}

	return out
}

func validateTasks(tasks []loader.Task, path string) []*errs.ParseError {
	var out []*errs.ParseError
	for ti, t := range tasks {
		loc := fmt.Sprintf("%s[%d]", path, ti)
		if _, ok := modules.Registry[t.Module]; !ok {
			out = append(out, &errs.ParseError{Phase: "domain", Path: loc, Err: fmt.Errorf("unknown module %q", t.Module)})
			continue
		}
		if attrs, ok := t.Args["attributes"].(map[string]any); ok {
			if mode, ok := attrs["mode"].(string); ok && mode != "" && !helper.IsOctalString(mode) {
				out = append(out, &errs.ParseError{Phase: "domain", Path: loc + ".attributes.mode", Err: fmt.Errorf("%q is not a valid octal mode", mode)})
			}
		}
	}
	return out
}

func validateNotifyTargets(tasks []loader.Task, handlerNames map[string]bool, path string) []*errs.ParseError {
	var out []*errs.ParseError
	for ti, t := range tasks {
		and, ok := t.Args["and"].(map[string]any)
		if !ok {
			continue
		}
		notify, ok := and["notify"].(string)
		if !ok || notify == "" {
			continue
		}
		if !handlerNames[notify] {
			out = append(out, &errs.ParseError{Phase: "domain", Path: fmt.Sprintf("%s[%d].and.notify", path, ti), Err: fmt.Errorf("notify target %q is not a declared handler", notify)})
		}
	}
	return out
}

func asParseError(err error, path string) *errs.ParseError {
	if pe, ok := err.(*errs.ParseError); ok {
		return pe
	}
	return &errs.ParseError{Phase: "domain", Path: path, Err: err}
}
