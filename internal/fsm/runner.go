package fsm

import (
	"context"
	"sync"

	"github.com/ormasoftchile/jetforge/internal/connection"
	pctx "github.com/ormasoftchile/jetforge/internal/context"
	"github.com/ormasoftchile/jetforge/internal/errs"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/task"
	"github.com/ormasoftchile/jetforge/internal/visitor"
)

// FatalError wraps a module.ContractViolationError surfaced by a worker,
// distinguishing it from an ordinary per-host task failure — the run must
// stop rather than continue to the next task.
type FatalError struct {
	Host string
	Err  error
}

func (e *FatalError) Error() string { return e.Host + ": " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// RunPlayTask dispatches one task across every host still remaining in the
// active play, one goroutine per host — the Go equivalent of
// fsm_run_task's rayon::par_iter fan-out. Each host's connection is
// established (and its per-host mutex held) before the task runs, so two
// tasks on the same host never race on its transport. The
// caller is responsible for the single, task-scoped OnTaskStart/OnTaskStop
// pair; RunPlayTask only reports the per-host outcomes.
//
// A host whose task outcome is Failed is marked failed for the remainder
// of the run and removed from the next task's remaining set; a
// ContractViolationError is a module programming bug, not a host failure,
// and aborts the whole run via the returned FatalError.
func RunPlayTask(ctx context.Context, pc *pctx.PlaybookContext, v visitor.Visitor, factory *connection.Factory, mod task.Module, spec TaskSpec) error {
	hosts := pc.RemainingHosts()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var fatal error

	for _, hostName := range hosts {
		host := pc.Inventory().Host(hostName)
		if host == nil {
			continue
		}
		wg.Add(1)
		go func(hostName string) {
			defer wg.Done()

			lock := factory.Lock(hostName)
			lock.Lock()
			defer lock.Unlock()

			conn := factory.Connection(host)
			if !spec.SyntaxOnly {
				if err := conn.Connect(ctx); err != nil {
					connErr := &errs.ConnectionError{Host: hostName, Op: "connect", Err: err}
					v.Debug(hostName, connErr.Error())
					pc.MarkFailed(hostName)
					v.OnHostFailed(hostName, &module.Response{Status: module.Failed, Message: connErr.Error()})
					return
				}
			}

			outcome := RunHostTask(ctx, pc, v, factory, host, mod, spec)

			if outcome.Fatal != nil {
				mu.Lock()
				if fatal == nil {
					fatal = &FatalError{Host: hostName, Err: outcome.Fatal}
				}
				mu.Unlock()
				return
			}

			resp := &module.Response{Status: outcome.Status, Message: outcome.Message}
			if outcome.Failed() {
				pc.MarkFailed(hostName)
				v.OnHostFailed(hostName, resp)
				return
			}
			v.OnHostOK(hostName, resp)
		}(hostName)
	}

	wg.Wait()
	return fatal
}
