package handle

import (
	"context"
	"fmt"
	"strings"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/helper"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/screen"
)

// Safety marks whether a command string has already been through the
// strict per-field screen, and so only needs the final, looser screen
// (Safe), or has not been screened at all (Unsafe — the `shell` module's
// `unsafe: true` escape hatch). A command marked Unsafe is not necessarily
// dangerous; it simply was not checked here.
type Safety int

const (
	Safe Safety = iota
	Unsafe
)

// Remote runs code against the machine being configured, whatever
// connection kind was resolved for it (Local when targeting localhost in
// local mode, RemoteShell over SSH, or NoOp during a syntax-only scan).
// Grounded on handle/remote.rs.
type Remote struct {
	host     *inventory.Host
	conn     connection.Connection
	response *Response
}

func newRemote(host *inventory.Host, conn connection.Connection, resp *Response) *Remote {
	return &Remote{host: host, conn: conn, response: resp}
}

// OSKind returns the target host's templated OS family.
func (r *Remote) OSKind() inventory.OSKind { return r.host.OS() }

// Whoami returns the identity the connection authenticated as.
func (r *Remote) Whoami(ctx context.Context) (string, *module.Response) {
	who, err := r.conn.Whoami(ctx)
	if err != nil {
		return "", r.response.Failed(err.Error())
	}
	return who, nil
}

// Run executes cmd, applying the final loose screen first, the second of
// the two screening passes every command goes through.
func (r *Remote) Run(ctx context.Context, cmd string, check connection.CheckRc) (*module.CommandResult, *module.Response) {
	return r.internalRun(ctx, cmd, Safe, check)
}

// RunUnsafe executes cmd without the final screen — the `shell` module's
// `unsafe: true` escape hatch.
func (r *Remote) RunUnsafe(ctx context.Context, cmd string, check connection.CheckRc) (*module.CommandResult, *module.Response) {
	return r.internalRun(ctx, cmd, Unsafe, check)
}

func (r *Remote) internalRun(ctx context.Context, cmd string, safety Safety, check connection.CheckRc) (*module.CommandResult, *module.Response) {
	if safety == Safe {
		if err := screen.Loose(cmd); err != nil {
			return nil, r.response.Failed(err.Error())
		}
	}
	result, err := r.conn.RunCommand(ctx, cmd, connection.Unchecked)
	if err != nil {
		return nil, r.response.Failed(err.Error())
	}
	out := &module.CommandResult{Cmd: result.Cmd, Stdout: result.Stdout, Rc: result.Rc}
	if check == connection.Checked && result.Rc != 0 {
		return out, r.response.CommandFailed(out)
	}
	return out, nil
}

// WriteData streams data (typically a rendered template) to a remote path.
func (r *Remote) WriteData(ctx context.Context, data []byte, path string) *module.Response {
	if err := r.conn.WriteData(ctx, data, path); err != nil {
		return r.response.Failed(err.Error())
	}
	return nil
}

// CopyFile copies localPath to dest, temporarily reclaiming ownership of
// an existing dest if the current connection identity does not already
// own it, then restoring the prior owner afterward.
func (r *Remote) CopyFile(ctx context.Context, localPath, dest string) *module.Response {
	owner, _, existed, resp := r.GetOwnership(ctx, dest)
	if resp != nil {
		return resp
	}
	var flipOwner bool
	if existed {
		whoami, resp := r.Whoami(ctx)
		if resp != nil {
			return resp
		}
		if owner != whoami {
			flipOwner = true
			if resp := r.SetOwner(ctx, dest, whoami, helper.NoRecurse); resp != nil {
				return resp
			}
		}
	}
	if err := r.conn.CopyFile(ctx, localPath, dest); err != nil {
		return r.response.Failed(err.Error())
	}
	if flipOwner {
		if resp := r.SetOwner(ctx, dest, owner, helper.NoRecurse); resp != nil {
			return resp
		}
	}
	return nil
}

// GetMode returns path's permission bits, or "", false if path does not exist.
func (r *Remote) GetMode(ctx context.Context, path string) (mode string, existed bool, resp *module.Response) {
	cmd, err := helper.GetMode(r.OSKind(), path)
	if err != nil {
		return "", false, r.response.Failed(err.Error())
	}
	result, resp := r.Run(ctx, cmd, connection.Unchecked)
	if resp != nil {
		return "", false, resp
	}
	if result.Rc != 0 {
		return "", false, nil
	}
	fields := strings.Fields(result.Stdout)
	if len(fields) == 0 {
		return "", false, nil
	}
	return fields[0], true, nil
}

// IsDirectory reports whether path is a directory. Uses CheckRc Checked:
// callers only ever call this after already establishing the path exists.
func (r *Remote) IsDirectory(ctx context.Context, path string) (bool, *module.Response) {
	cmd, err := helper.GetIsDirectory(path)
	if err != nil {
		return false, r.response.Failed(err.Error())
	}
	result, resp := r.Run(ctx, cmd, connection.Checked)
	if resp != nil {
		return false, resp
	}
	return strings.HasPrefix(result.Stdout, "d"), nil
}

// TouchFile creates path if absent, or updates its mtime.
func (r *Remote) TouchFile(ctx context.Context, path string) *module.Response {
	cmd, err := helper.GetTouch(path)
	if err != nil {
		return r.response.Failed(err.Error())
	}
	_, resp := r.Run(ctx, cmd, connection.Checked)
	return resp
}

// DeleteFile removes path, ignoring absence.
func (r *Remote) DeleteFile(ctx context.Context, path string) *module.Response {
	cmd, err := helper.GetDeleteFile(path)
	if err != nil {
		return r.response.Failed(err.Error())
	}
	_, resp := r.Run(ctx, cmd, connection.Checked)
	return resp
}

// GetOwnership returns path's owner and group, or existed=false if path does not exist.
func (r *Remote) GetOwnership(ctx context.Context, path string) (owner, group string, existed bool, resp *module.Response) {
	cmd, err := helper.GetOwnership(path)
	if err != nil {
		return "", "", false, r.response.Failed(err.Error())
	}
	result, resp := r.Run(ctx, cmd, connection.Unchecked)
	if resp != nil {
		return "", "", false, resp
	}
	if result.Rc != 0 {
		return "", "", false, nil
	}
	fields := strings.Fields(result.Stdout)
	if len(fields) < 4 {
		return "", "", false, r.response.Failed(fmt.Sprintf("unexpected output format from %s: %s", cmd, result.Stdout))
	}
	return fields[2], fields[3], true, nil
}

// SetOwner chowns path to owner.
func (r *Remote) SetOwner(ctx context.Context, path, owner string, recurse helper.Recurse) *module.Response {
	cmd, err := helper.SetOwner(path, owner, recurse)
	if err != nil {
		return r.response.Failed(err.Error())
	}
	_, resp := r.Run(ctx, cmd, connection.Checked)
	return resp
}

// SetGroup chgrps path to group.
func (r *Remote) SetGroup(ctx context.Context, path, group string, recurse helper.Recurse) *module.Response {
	cmd, err := helper.SetGroup(path, group, recurse)
	if err != nil {
		return r.response.Failed(err.Error())
	}
	_, resp := r.Run(ctx, cmd, connection.Checked)
	return resp
}

// SetMode chmods path to mode.
func (r *Remote) SetMode(ctx context.Context, path, mode string, recurse helper.Recurse) *module.Response {
	cmd, err := helper.SetMode(path, mode, recurse)
	if err != nil {
		return r.response.Failed(err.Error())
	}
	_, resp := r.Run(ctx, cmd, connection.Checked)
	return resp
}

// GetSHA512 returns path's SHA-512 digest as computed on the target host.
// Unlike Local.GetSHA512, results here are never cached — only controller
// reads benefit from the per-task checksum cache.
func (r *Remote) GetSHA512(ctx context.Context, path string) (string, *module.Response) {
	cmd, err := helper.GetSHA512(r.OSKind(), path)
	if err != nil {
		return "", r.response.Failed(err.Error())
	}
	result, resp := r.Run(ctx, cmd, connection.Unchecked)
	if resp != nil {
		return "", resp
	}
	switch result.Rc {
	case 0:
		fields := strings.Fields(result.Stdout)
		if len(fields) == 0 {
			return "", r.response.Failed("checksum command produced no output: " + path)
		}
		return fields[0], nil
	case 127:
		return "", nil
	default:
		return "", r.response.Failed("checksum failed: " + path + ". " + result.Stdout)
	}
}

// QueryCommonFileAttributes probes path's current mode and, if attrs is
// non-nil, its owner/group, appending every Field that differs from attrs
// into changes. A path that does not yet exist always contributes
// FieldContent and skips the owner/group probe. Grounded on
// handle/remote.rs's query_common_file_attributes.
func (r *Remote) QueryCommonFileAttributes(ctx context.Context, path string, attrs *helper.FileAttributes, changes *[]module.Field) (mode string, existed bool, resp *module.Response) {
	mode, existed, resp = r.GetMode(ctx, path)
	if resp != nil {
		return "", existed, resp
	}
	if !existed {
		*changes = append(*changes, module.FieldContent)
		return "", false, nil
	}
	if attrs != nil {
		owner, group, ownExisted, resp := r.GetOwnership(ctx, path)
		if resp != nil {
			return mode, existed, resp
		}
		if !ownExisted {
			return mode, existed, r.response.Failed("file was deleted unexpectedly mid-operation")
		}
		if attrs.Owner != nil && *attrs.Owner != owner {
			*changes = append(*changes, module.FieldOwner)
		}
		if attrs.Group != nil && *attrs.Group != group {
			*changes = append(*changes, module.FieldGroup)
		}
		if attrs.Mode != nil && *attrs.Mode != mode {
			*changes = append(*changes, module.FieldMode)
		}
	}
	return mode, existed, nil
}

// ProcessCommonFileAttributes applies only the Fields named in changes.
func (r *Remote) ProcessCommonFileAttributes(ctx context.Context, path string, attrs *helper.FileAttributes, changes []module.Field) *module.Response {
	if attrs == nil {
		return nil
	}
	for _, change := range changes {
		switch change {
		case module.FieldOwner:
			if attrs.Owner == nil {
				return r.response.Failed("owner change requested with no owner set")
			}
			if resp := r.SetOwner(ctx, path, *attrs.Owner, helper.NoRecurse); resp != nil {
				return resp
			}
		case module.FieldGroup:
			if attrs.Group == nil {
				return r.response.Failed("group change requested with no group set")
			}
			if resp := r.SetGroup(ctx, path, *attrs.Group, helper.NoRecurse); resp != nil {
				return resp
			}
		case module.FieldMode:
			if attrs.Mode == nil {
				return r.response.Failed("mode change requested with no mode set")
			}
			if resp := r.SetMode(ctx, path, *attrs.Mode, helper.NoRecurse); resp != nil {
				return resp
			}
		}
	}
	return nil
}

// ProcessAllCommonFileAttributes applies every owner/group/mode attrs sets,
// unconditionally — used by Create, where there is no prior Query change
// list to consult.
func (r *Remote) ProcessAllCommonFileAttributes(ctx context.Context, path string, attrs *helper.FileAttributes) *module.Response {
	return r.ProcessCommonFileAttributes(ctx, path, attrs, helper.AllFileAttributeFields())
}
