// Package connection implements the capability {connect, run_command,
// write_data, copy_file, whoami} with local, remote-shell, and no-op
// providers, plus a host-keyed, lock-guarded factory.
package connection

import (
	"context"
	"strconv"
)

// CheckRc selects whether RunCommand treats a non-zero rc as an error.
type CheckRc int

const (
	Unchecked CheckRc = iota
	Checked
)

// CommandResult is the raw outcome of running a command over a connection.
type CommandResult struct {
	Cmd    string
	Stdout string
	Stderr string
	Rc     int
}

// Connection is the capability every provider implements. A failed command
// (non-zero rc under Checked) does not invalidate the connection — only a
// transport-level error (Connect/RunCommand/WriteData/CopyFile returning
// err != nil) does.
type Connection interface {
	// Connect performs whatever handshake the transport needs. Local and
	// remote-shell implementations probe `uname` on first connect and
	// populate the host's OS kind.
	Connect(ctx context.Context) error

	// Whoami returns the identity the connection authenticated as.
	Whoami(ctx context.Context) (string, error)

	// RunCommand executes cmd and returns its result. When check is
	// Checked, a non-zero rc is returned as a *CommandError.
	RunCommand(ctx context.Context, cmd string, check CheckRc) (*CommandResult, error)

	// WriteData streams data to remotePath.
	WriteData(ctx context.Context, data []byte, remotePath string) error

	// CopyFile streams the contents of localPath to remotePath.
	CopyFile(ctx context.Context, localPath, remotePath string) error
}

// CommandError is returned by RunCommand when CheckRc is Checked and the
// command's rc is non-zero.
type CommandError struct {
	Cmd    string
	Rc     int
	Stderr string
}

func (e *CommandError) Error() string {
	return "command failed (rc=" + strconv.Itoa(e.Rc) + "): " + e.Cmd
}
