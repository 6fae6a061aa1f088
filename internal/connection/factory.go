package connection

import (
	"sync"

	"github.com/ormasoftchile/jetforge/internal/inventory"
)

// Kind selects which provider a Factory hands out.
type Kind int

const (
	KindLocal Kind = iota
	KindRemote
	KindNoOp
)

// HostAddress resolves a host to a dial target and optional port for the
// remote-shell provider.
type HostAddress struct {
	Addr string
	User string
	Port int
}

// Resolver maps a host name to its remote address, the way an inventory
// directory's host_vars would supply ansible_host/ssh_user/ssh_port.
type Resolver func(hostName string) HostAddress

// Factory caches one connection per host for the duration of the run and
// serializes concurrent command dispatch per host. A dedicated local
// connection is cached separately and reused for controller-side work
// (local sha checks, templating reads).
type Factory struct {
	kind     Kind
	resolver Resolver

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	conns map[string]Connection

	localOnce sync.Once
	localConn *Local
}

// NewFactory creates a factory of the given kind. resolver is only
// consulted for KindRemote and may be nil otherwise.
func NewFactory(kind Kind, resolver Resolver) *Factory {
	return &Factory{
		kind:     kind,
		resolver: resolver,
		locks:    make(map[string]*sync.Mutex),
		conns:    make(map[string]Connection),
	}
}

// Connection returns the cached connection for host, creating one on first
// use. The caller must hold the *sync.Mutex returned by Lock(host) for the
// duration of any command dispatch against it.
func (f *Factory) Connection(host *inventory.Host) Connection {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := host.Name()
	if c, ok := f.conns[name]; ok {
		return c
	}
	var c Connection
	switch f.kind {
	case KindNoOp:
		c = NewNoOp(host)
	case KindRemote:
		addr := HostAddress{Addr: name}
		if f.resolver != nil {
			addr = f.resolver(name)
		}
		c = NewRemoteShell(host, addr.Addr, addr.User, addr.Port)
	default:
		c = NewLocal(host)
	}
	f.conns[name] = c
	return c
}

// Lock returns the per-host mutex a worker must hold while dispatching a
// command on host's connection, ensuring two tasks never race on the same
// transport.
func (f *Factory) Lock(hostName string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[hostName]
	if !ok {
		l = &sync.Mutex{}
		f.locks[hostName] = l
	}
	return l
}

// LocalConnection returns the single cached controller-side local
// connection, independent of per-host remote connections, used for local
// sha checks and templating reads.
func (f *Factory) LocalConnection() *Local {
	f.localOnce.Do(func() {
		f.localConn = NewLocal(nil)
	})
	return f.localConn
}
