// Package playbook drives a loaded playbook's plays, roles, tasks, and
// handlers end to end. Grounded on
// original_source/src/playbooks/runner.rs's play loop and on
// internal/fsm.RunPlayTask for the per-task fan-out it sits on top of.
package playbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/jetforge/internal/connection"
	pctx "github.com/ormasoftchile/jetforge/internal/context"
	"github.com/ormasoftchile/jetforge/internal/errs"
	"github.com/ormasoftchile/jetforge/internal/fsm"
	"github.com/ormasoftchile/jetforge/internal/handlers"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/loader"
	"github.com/ormasoftchile/jetforge/internal/modules"
	"github.com/ormasoftchile/jetforge/internal/visitor"
)

// Options configures one run of Run.
type Options struct {
	// SyntaxOnly runs every task's evaluate leg with an Off-mode NoOp
	// connection and dispatches nothing — the `syntax` subcommand.
	SyntaxOnly bool

	// OnlyGroups/OnlyHosts, when non-empty, restrict every play's
	// computed host set to their intersection — the CLI's --groups and
	// --hosts flags.
	OnlyGroups []string
	OnlyHosts  []string
}

func (o Options) filter(hosts []string, inv *inventory.Inventory) []string {
	if len(o.OnlyGroups) == 0 && len(o.OnlyHosts) == 0 {
		return hosts
	}
	allowed := make(map[string]bool)
	for _, h := range o.OnlyHosts {
		allowed[h] = true
	}
	for _, h := range inv.DescendantHostsOfAny(o.OnlyGroups) {
		allowed[h] = true
	}
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if allowed[h] {
			out = append(out, h)
		}
	}
	return out
}

// Run drives every play in every given playbook, in order, stopping the
// whole run on the first fsm.FatalError (a module contract violation).
// It returns the hosts that failed during the run (empty on full
// success) alongside any fatal error.
func Run(ctx context.Context, pb []loader.PlaybookFile, inv *inventory.Inventory, factory *connection.Factory, v visitor.Visitor, opts Options) ([]string, error) {
	pc := pctx.New(inv)
	for _, file := range pb {
		pc.SetPlaybook(file.Path, file.Dir)
		v.OnPlaybookStart(file.Path)
		for _, play := range file.Plays {
			if err := runPlay(ctx, pc, v, factory, file.Dir, play, opts); err != nil {
				v.OnPlaybookStop(file.Path)
				return pc.FailedHosts(), err
			}
		}
		v.OnPlaybookStop(file.Path)
	}
	return pc.FailedHosts(), nil
}

func runPlay(ctx context.Context, pc *pctx.PlaybookContext, v visitor.Visitor, factory *connection.Factory, playbookDir string, play loader.Play, opts Options) error {
	hosts := opts.filter(pc.Inventory().DescendantHostsOfAny(play.Groups), pc.Inventory())
	vars, err := mergePlayVars(playbookDir, play)
	if err != nil {
		return err
	}
	pc.BeginPlay(play.Name, vars, hosts)
	v.OnPlayStart(play.Name, hosts)
	defer v.OnPlayStop(play.Name)

	var handlerTasks []loader.Task

	for _, roleName := range play.Roles {
		role, err := loader.LoadRole(playbookDir, roleName)
		if err != nil {
			return err
		}
		pc.SetRole(role.Name, "")
		if err := runTasks(ctx, pc, v, factory, role.Tasks, handlers.NormalTasks, opts); err != nil {
			return err
		}
		handlerTasks = append(handlerTasks, role.Handlers...)
		pc.SetRole("", "")
	}

	if err := runTasks(ctx, pc, v, factory, play.Tasks, handlers.NormalTasks, opts); err != nil {
		return err
	}
	handlerTasks = append(handlerTasks, play.Handlers...)

	if err := runTasks(ctx, pc, v, factory, handlerTasks, handlers.Handlers, opts); err != nil {
		return err
	}

	playCounter := pc.PlayCounter()
	for _, hostName := range hosts {
		if h := pc.Inventory().Host(hostName); h != nil {
			h.DropNotifications(playCounter)
			h.FlushChecksums()
		}
	}
	return nil
}

func runTasks(ctx context.Context, pc *pctx.PlaybookContext, v visitor.Visitor, factory *connection.Factory, tasks []loader.Task, mode handlers.Mode, opts Options) error {
	for _, t := range tasks {
		mod, ok := modules.Registry[t.Module]
		if !ok {
			return fmt.Errorf("unknown module %q for task %q", t.Module, t.Name)
		}
		pc.NextTaskCount()
		pc.SetCurrentTask(pctx.TaskDescriptor{Name: t.Name, Module: t.Module})

		hosts := pc.RemainingHosts()
		v.OnTaskStart(t.Name, t.Module, hosts)
		err := fsm.RunPlayTask(ctx, pc, v, factory, mod, fsm.TaskSpec{
			Mode:       mode,
			Args:       t.Args,
			SyntaxOnly: opts.SyntaxOnly,
		})
		v.OnTaskStop(t.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

// mergePlayVars blends a play's defaults, its vars_files (in listed
// order), and its inline vars — later sources win, so inline vars always
// take precedence over file-sourced ones.
func mergePlayVars(playbookDir string, play loader.Play) (map[string]any, error) {
	out := make(map[string]any, len(play.Defaults)+len(play.Vars))
	for k, v := range play.Defaults {
		out[k] = v
	}
	for _, rel := range play.VarsFiles {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(playbookDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &errs.ParseError{Phase: "domain", Path: path, Err: err}
		}
		var fileVars map[string]any
		if err := yaml.Unmarshal(data, &fileVars); err != nil {
			return nil, &errs.ParseError{Phase: "structural", Path: path, Err: err}
		}
		for k, v := range fileVars {
			out[k] = v
		}
	}
	for k, v := range play.Vars {
		out[k] = v
	}
	return out, nil
}
