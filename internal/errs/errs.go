// Package errs names the fatal error classes that do not already have a
// natural home in another package:
// module.ContractViolationError covers contract violations,
// template.MissingVariableError covers template errors, and
// connection.CommandError covers command-rc errors. This package adds the
// remaining three: ParseError (YAML/structural/semantic/domain failures,
// all fatal before any connection opens), ConnectionError (connect/channel
// failures), and AssertionError (a user-supplied assertion message).
package errs

import "fmt"

// ParseError wraps a failure discovered while loading or validating an
// inventory or playbook, before any host is ever dispatched to.
type ParseError struct {
	Phase string // "structural", "semantic", or "domain"
	Path  string // file path or JSON-path-like location within it
	Err   error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConnectionError wraps a connect failure or a broken channel,
// distinguishing a transport fault (which marks the
// host failed and skips its remaining tasks for the play) from an ordinary
// command-rc failure on an otherwise-healthy connection.
type ConnectionError struct {
	Host string
	Op   string // "connect", "run_command", "write_data", "copy_file", "whoami"
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed during %s: %s", e.Host, e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AssertionError carries a user-supplied assertion message. The assert
// module does not return it: a failed assertion is reported as a Failed
// response whose message begins "assertion failed: ".
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string { return e.Message }
