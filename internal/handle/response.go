package handle

import "github.com/ormasoftchile/jetforge/internal/module"

// Response builds the module.Response value a dispatch (or evaluate, for
// Failed) returns, and reports the command-level lifecycle events that go
// with it. One constructor per legal status, mirroring handle/response.rs;
// legality itself is enforced once, centrally, by module.CheckLegal rather
// than by an assertion in each constructor — a mismatched status here is a
// recoverable ContractViolationError, not a panic.

// commandVisitor is the narrow slice of visitor.Visitor the Response
// facet needs, with the host name already bound.
type commandVisitor interface {
	OnCommandOK(cmd *module.CommandResult)
	OnCommandFailed(cmd *module.CommandResult)
}

type Response struct {
	host    string
	visitor commandVisitor
}

func newResponse(host string, v commandVisitor) *Response {
	return &Response{host: host, visitor: v}
}

// Failed builds a Failed response carrying msg. Legal for any request kind.
func (r *Response) Failed(msg string) *module.Response {
	return &module.Response{Status: module.Failed, Message: msg}
}

// NotSupported is the common Failed case for an operation a module never implements.
func (r *Response) NotSupported() *module.Response {
	return r.Failed("not supported")
}

// CommandFailed reports a failed command to the visitor and returns the
// matching Failed response.
func (r *Response) CommandFailed(cmd *module.CommandResult) *module.Response {
	r.visitor.OnCommandFailed(cmd)
	return &module.Response{Status: module.Failed, Message: "command failed", Command: cmd}
}

// CommandOK reports a successful command to the visitor and returns an
// IsExecuted response carrying it — the shortcut modules like shell use
// instead of calling Executed directly.
func (r *Response) CommandOK(cmd *module.CommandResult) *module.Response {
	r.visitor.OnCommandOK(cmd)
	return &module.Response{Status: module.IsExecuted, Command: cmd}
}

func (r *Response) Skipped() *module.Response  { return &module.Response{Status: module.IsSkipped} }
func (r *Response) Matched() *module.Response  { return &module.Response{Status: module.IsMatched} }
func (r *Response) Created() *module.Response  { return &module.Response{Status: module.IsCreated} }
func (r *Response) Executed() *module.Response { return &module.Response{Status: module.IsExecuted} }
func (r *Response) Removed() *module.Response  { return &module.Response{Status: module.IsRemoved} }
func (r *Response) Passive() *module.Response  { return &module.Response{Status: module.IsPassive} }

func (r *Response) Modified(changes []module.Field) *module.Response {
	return &module.Response{Status: module.IsModified, Changes: changes}
}

func (r *Response) NeedsCreation() *module.Response {
	return &module.Response{Status: module.NeedsCreation}
}

func (r *Response) NeedsModification(changes []module.Field) *module.Response {
	return &module.Response{Status: module.NeedsModification, Changes: changes}
}

func (r *Response) NeedsRemoval() *module.Response {
	return &module.Response{Status: module.NeedsRemoval}
}

func (r *Response) NeedsExecution() *module.Response {
	return &module.Response{Status: module.NeedsExecution}
}

func (r *Response) NeedsPassive() *module.Response {
	return &module.Response{Status: module.NeedsPassive}
}
