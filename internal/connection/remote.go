package connection

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ormasoftchile/jetforge/internal/inventory"
)

// RemoteShell opens a persistent authenticated channel to a host by
// shelling out to the system `ssh` binary with OpenSSH connection
// multiplexing (ControlMaster/ControlPath/ControlPersist), then runs
// commands synchronously over that shared channel. This mirrors the
// teacher's process-spawn transport (executor.runStdio) rather than
// vendoring an SSH client library, matching the minimal wrapper shape of
// original_source's connection/ssh.rs.
type RemoteShell struct {
	mu          sync.Mutex
	host        *inventory.Host
	hostAddr    string
	user        string
	port        int
	controlPath string
	connected   bool
}

// NewRemoteShell returns a connection bound to host, authenticating as
// user on hostAddr:port.
func NewRemoteShell(host *inventory.Host, hostAddr, user string, port int) *RemoteShell {
	return &RemoteShell{
		host:        host,
		hostAddr:    hostAddr,
		user:        user,
		port:        port,
		controlPath: filepath.Join(os.TempDir(), fmt.Sprintf("jetforge-ctl-%s", sanitizeForPath(hostAddr))),
	}
}

func sanitizeForPath(s string) string {
	return strings.NewReplacer("/", "_", ":", "_").Replace(s)
}

func (r *RemoteShell) sshBaseArgs() []string {
	args := []string{
		"-o", "ControlMaster=auto",
		"-o", "ControlPath=" + r.controlPath,
		"-o", "ControlPersist=600",
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=accept-new",
	}
	if r.port != 0 {
		args = append(args, "-p", fmt.Sprintf("%d", r.port))
	}
	target := r.hostAddr
	if r.user != "" {
		target = r.user + "@" + r.hostAddr
	}
	return append(args, target)
}

func (r *RemoteShell) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connected {
		return nil
	}
	args := append(append([]string{}, r.sshBaseArgs()...), "true")
	cmd := exec.CommandContext(ctx, "ssh", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("connect to %s: %w: %s", r.hostAddr, err, stderr.String())
	}
	r.connected = true

	res, err := r.runLocked(ctx, "uname -s", Unchecked)
	if err != nil {
		return fmt.Errorf("uname probe: %w", err)
	}
	if r.host != nil {
		r.host.SetOS(unameToOSKind(res.Stdout))
	}
	return nil
}

func (r *RemoteShell) Whoami(ctx context.Context) (string, error) {
	res, err := r.RunCommand(ctx, "whoami", Unchecked)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (r *RemoteShell) RunCommand(ctx context.Context, cmd string, check CheckRc) (*CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runLocked(ctx, cmd, check)
}

func (r *RemoteShell) runLocked(ctx context.Context, cmd string, check CheckRc) (*CommandResult, error) {
	args := append(append([]string{}, r.sshBaseArgs()...), cmd)
	c := exec.CommandContext(ctx, "ssh", args...) //#nosec G204 -- cmd is produced exclusively by internal/helper, never by raw module input
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	rc := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			rc = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("ssh %s: %w", r.hostAddr, err)
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

// WriteData streams data over the multiplexed channel by piping it into
// `cat > remotePath` on stdin.
func (r *RemoteShell) WriteData(ctx context.Context, data []byte, remotePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	args := append(append([]string{}, r.sshBaseArgs()...), fmt.Sprintf("cat > %s", remotePath))
	c := exec.CommandContext(ctx, "ssh", args...)
	c.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("write %s on %s: %w: %s", remotePath, r.hostAddr, err, stderr.String())
	}
	return nil
}

func (r *RemoteShell) CopyFile(ctx context.Context, localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}
	return r.WriteData(ctx, data, remotePath)
}
