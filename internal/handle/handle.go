// Package handle implements the per-(host,task) facade every module's
// Evaluate/Dispatch leg is given: Local (always runs on the controller),
// Remote (runs against the target host through whatever connection kind
// was resolved for it), Response (builds module.Response values) and
// Template (renders and type-coerces module arguments). Grounded on
// handle/{handle,local,remote,response,template}.rs.
package handle

import (
	"github.com/ormasoftchile/jetforge/internal/connection"
	pctx "github.com/ormasoftchile/jetforge/internal/context"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/template"
	"github.com/ormasoftchile/jetforge/internal/visitor"
)

// visitorAdapter binds a visitor.Visitor and a host name once, satisfying
// commandVisitor without every Response call threading the host through.
type visitorAdapter struct {
	host string
	v    visitor.Visitor
}

func (a visitorAdapter) OnCommandOK(cmd *module.CommandResult) {
	a.v.OnCommandOK(a.host, visitor.CommandOutcome{Host: a.host, Command: cmd})
}

func (a visitorAdapter) OnCommandFailed(cmd *module.CommandResult) {
	a.v.OnCommandFailed(a.host, visitor.CommandOutcome{Host: a.host, Command: cmd})
}

// TaskHandle is the facade passed to every module call. One is constructed
// per (host, task) dispatch; it is not shared across hosts.
type TaskHandle struct {
	ctx     *pctx.PlaybookContext
	visitor visitor.Visitor
	inv     *inventory.Inventory
	host    *inventory.Host
	factory *connection.Factory

	Local    *Local
	Remote   *Remote
	Response *Response
	Template *Template
}

// New builds the facade for one (host, task) dispatch. conn is the
// connection the caller already resolved for host (Local, RemoteShell, or
// NoOp during a syntax-only scan); factory additionally supplies the
// controller-side local connection Local.GetSHA512 and friends need.
func New(ctx *pctx.PlaybookContext, v visitor.Visitor, factory *connection.Factory, host *inventory.Host, conn connection.Connection, tm template.Mode) *TaskHandle {
	resp := newResponse(host.Name(), visitorAdapter{host: host.Name(), v: v})
	h := &TaskHandle{
		ctx:      ctx,
		visitor:  v,
		inv:      ctx.Inventory(),
		host:     host,
		factory:  factory,
		Response: resp,
	}
	h.Local = newLocal(factory, ctx.Inventory(), ctx, resp)
	h.Remote = newRemote(host, conn, resp)
	h.Template = newTemplate(ctx, host, resp, tm)
	return h
}

// Context returns the shared playbook run state.
func (h *TaskHandle) Context() *pctx.PlaybookContext { return h.ctx }

// Visitor returns the active reporting sink.
func (h *TaskHandle) Visitor() visitor.Visitor { return h.visitor }

// Host returns the host this facade is bound to.
func (h *TaskHandle) Host() *inventory.Host { return h.host }

// Localhost returns the inventory's controller-side host, used by modules
// that need control-machine facts (e.g. the architecture the controller
// itself runs on) regardless of which host they are configuring.
func (h *TaskHandle) Localhost() *inventory.Host {
	return h.inv.Host("localhost")
}

// Debug emits a single debug line tagged with this handle's host.
func (h *TaskHandle) Debug(message string) {
	h.visitor.Debug(h.host.Name(), message)
}

// DebugLines emits a multi-line debug block tagged with this handle's host.
func (h *TaskHandle) DebugLines(messages []string) {
	h.visitor.DebugLines(h.host.Name(), messages)
}
