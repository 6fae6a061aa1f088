// Package visitor defines the pluggable reporting interface every run
// drives lifecycle events through. Two concrete sinks live alongside it:
// a JSONL trace sink and a plain console sink (see jsonl.go, console.go).
package visitor

import "github.com/ormasoftchile/jetforge/internal/module"

// CommandOutcome carries the command a module ran and its result, for the
// on_command_ok/on_command_failed events (grounded on handle/response.rs).
type CommandOutcome struct {
	Host    string
	Command *module.CommandResult
}

// Visitor receives every lifecycle event a run produces. Implementations
// must be safe for concurrent use: events arrive from every host's worker
// goroutine.
type Visitor interface {
	OnPlaybookStart(path string)
	OnPlaybookStop(path string)
	OnPlayStart(name string, hosts []string)
	OnPlayStop(name string)
	OnTaskStart(taskName, moduleName string, hosts []string)
	OnTaskStop(taskName string)
	OnHostOK(host string, resp *module.Response)
	OnHostFailed(host string, resp *module.Response)
	OnCommandOK(host string, outcome CommandOutcome)
	OnCommandFailed(host string, outcome CommandOutcome)
	OnHandlerNotified(host, handlerName string)
	Debug(host, message string)
	DebugLines(host string, messages []string)

	// IsCheckMode reports whether the active run is in check-mode: the
	// FSM still runs Validate/Query but skips every mutating transition
	// (Create/Modify/Remove/Execute/Passive), returning the outcome the
	// Query leg predicted.
	IsCheckMode() bool
}
