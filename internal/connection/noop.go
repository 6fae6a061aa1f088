package connection

import (
	"context"

	"github.com/ormasoftchile/jetforge/internal/inventory"
)

// NoOp is used for syntax scans. RunCommand returns a synthetic success so
// a module's evaluate/dispatch path is still exercised without touching
// any real system; it sets the host's OS to Linux so templating proceeds.
type NoOp struct {
	host *inventory.Host
}

func NewNoOp(host *inventory.Host) *NoOp {
	return &NoOp{host: host}
}

func (n *NoOp) Connect(ctx context.Context) error {
	if n.host != nil {
		n.host.SetOS(inventory.OSLinux)
	}
	return nil
}

func (n *NoOp) Whoami(ctx context.Context) (string, error) {
	return "syntax-scan", nil
}

func (n *NoOp) RunCommand(ctx context.Context, cmd string, check CheckRc) (*CommandResult, error) {
	return &CommandResult{Cmd: cmd, Stdout: "__simulated__", Rc: 0}, nil
}

func (n *NoOp) WriteData(ctx context.Context, data []byte, remotePath string) error {
	return nil
}

func (n *NoOp) CopyFile(ctx context.Context, localPath, remotePath string) error {
	return nil
}
