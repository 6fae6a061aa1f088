package handle

import (
	"context"
	"os"
	"strings"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/helper"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/screen"
)

// taskCounter is the one PlaybookContext method Local needs, named
// independently so this file does not import the context package purely
// for it.
type taskCounter interface {
	TaskCount() int
}

// Local runs code that always executes on the control machine, whether the
// run targets a remote host over SSH or the local machine itself. Code
// that touches the machine *being configured* always lives in Remote,
// never here, even when that machine happens to be localhost — grounded on
// handle/local.rs.
type Local struct {
	factory  *connection.Factory
	inv      *inventory.Inventory
	pc       taskCounter
	response *Response
}

func newLocal(factory *connection.Factory, inv *inventory.Inventory, pc taskCounter, resp *Response) *Local {
	return &Local{factory: factory, inv: inv, pc: pc, response: resp}
}

// Localhost returns the inventory's "localhost" entry, the host every
// controller-side checksum and OS probe is recorded against.
func (l *Local) Localhost() *inventory.Host {
	return l.inv.Host("localhost")
}

// run executes cmd on the controller's own local connection. Per
// handle/local.rs this may only be called during the Query leg — nothing
// here is allowed to mutate the machine being configured.
func (l *Local) run(ctx context.Context, cmd string, check connection.CheckRc) (*module.CommandResult, *module.Response) {
	if err := screen.Loose(cmd); err != nil {
		return nil, l.response.Failed(err.Error())
	}
	result, err := l.factory.LocalConnection().RunCommand(ctx, cmd, connection.Unchecked)
	if err != nil {
		return nil, l.response.Failed(err.Error())
	}
	out := &module.CommandResult{Cmd: result.Cmd, Stdout: result.Stdout, Rc: result.Rc}
	if check == connection.Checked && result.Rc != 0 {
		return out, l.response.CommandFailed(out)
	}
	return out, nil
}

// ReadFile reads a file from the controller's own filesystem (a template
// or source file referenced by a playbook, never the target host).
func (l *Local) ReadFile(path string) (string, *module.Response) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", l.response.Failed(err.Error())
	}
	return string(data), nil
}

func (l *Local) internalSHA512(ctx context.Context, path string) (string, *module.Response) {
	osKind := inventory.OSLinux
	if lh := l.Localhost(); lh != nil {
		osKind = lh.OS()
	}
	cmd, err := helper.GetSHA512(osKind, path)
	if err != nil {
		return "", l.response.Failed(err.Error())
	}
	result, resp := l.run(ctx, cmd, connection.Unchecked)
	if resp != nil {
		return "", resp
	}
	switch result.Rc {
	case 0:
		fields := strings.Fields(result.Stdout)
		if len(fields) == 0 {
			return "", l.response.Failed("checksum command produced no output: " + path)
		}
		return fields[0], nil
	case 127:
		return "", nil
	default:
		return "", l.response.Failed("checksum failed: " + path + ". " + result.Stdout)
	}
}

// GetSHA512 returns path's SHA-512 digest as computed on the controller,
// consulting (and populating) localhost's checksum cache, keyed by the
// active task's counter, when useCache is true.
func (l *Local) GetSHA512(ctx context.Context, path string, useCache bool) (string, *module.Response) {
	lh := l.Localhost()
	if useCache && lh != nil {
		if cached, ok := lh.CachedChecksum(l.pc.TaskCount(), path); ok {
			return cached, nil
		}
	}
	value, resp := l.internalSHA512(ctx, path)
	if resp != nil {
		return "", resp
	}
	if useCache && lh != nil {
		lh.SetCachedChecksum(l.pc.TaskCount(), path, value)
	}
	return value, nil
}
