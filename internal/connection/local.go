package connection

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"

	"github.com/ormasoftchile/jetforge/internal/inventory"
)

// Local forks `sh -c <cmd>` on the controller. On first Connect it runs a
// uname probe and populates the host's OS kind, grounded on the
// executor.runStdio process-spawn pattern.
type Local struct {
	mu        sync.Mutex
	host      *inventory.Host
	connected bool
}

// NewLocal returns a Local connection bound to host (nil for the
// controller-only connection used for local sha checks and templating
// reads — see factory.Factory.LocalConnection).
func NewLocal(host *inventory.Host) *Local {
	return &Local{host: host}
}

func (l *Local) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.connected {
		return nil
	}
	l.connected = true
	if l.host == nil {
		return nil
	}
	res, err := l.runLocked(ctx, "uname -s", Unchecked)
	if err != nil {
		return fmt.Errorf("uname probe: %w", err)
	}
	l.host.SetOS(unameToOSKind(res.Stdout))
	return nil
}

func (l *Local) Whoami(ctx context.Context) (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("whoami: %w", err)
	}
	return u.Username, nil
}

func (l *Local) RunCommand(ctx context.Context, cmd string, check CheckRc) (*CommandResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runLocked(ctx, cmd, check)
}

func (l *Local) runLocked(ctx context.Context, cmd string, check CheckRc) (*CommandResult, error) {
	c := exec.CommandContext(ctx, "sh", "-c", cmd) //#nosec G204 -- cmd is produced exclusively by internal/helper, never by raw module input
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	rc := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			rc = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("exec %q: %w", cmd, err)
		}
	}
	result := &CommandResult{
		Cmd:    cmd,
		Stdout: strings.TrimRight(stdout.String(), "\n"),
		Stderr: strings.TrimRight(stderr.String(), "\n"),
		Rc:     rc,
	}
	if check == Checked && rc != 0 {
		return result, &CommandError{Cmd: cmd, Rc: rc, Stderr: result.Stderr}
	}
	return result, nil
}

func (l *Local) WriteData(ctx context.Context, data []byte, remotePath string) error {
	if err := os.WriteFile(remotePath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", remotePath, err)
	}
	return nil
}

func (l *Local) CopyFile(ctx context.Context, localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}
	return l.WriteData(ctx, data, remotePath)
}

func unameToOSKind(uname string) inventory.OSKind {
	switch strings.TrimSpace(uname) {
	case "Darwin":
		return inventory.OSMacOS
	case "Linux":
		return inventory.OSLinux
	case "AIX":
		return inventory.OSAIX
	case "NetBSD":
		return inventory.OSNetBSD
	case "OpenBSD":
		return inventory.OSOpenBSD
	default:
		if strings.Contains(uname, "HP-UX") {
			return inventory.OSHPUX
		}
		return inventory.OSLinux
	}
}
