// Package handlers implements the play-scoped handler/notification
// subsystem: a task's `and.notify` records a handler name against its
// host for the active play only; a handler task only runs if its name
// was recorded during the play currently in progress. Grounded on
// original_source/src/playbooks/task_fsm.rs (the notify/is_notified call
// sites) and internal/inventory/host.go's play-partitioned notified set.
package handlers

import "github.com/ormasoftchile/jetforge/internal/inventory"

// Mode distinguishes a normal-tasks pass, which may record new
// notifications, from a handlers pass, which may only consume them. Every
// play's handlers run once, after its tasks.
type Mode int

const (
	NormalTasks Mode = iota
	Handlers
)

// Record notes that handlerName was notified by a change on host during
// playCounter. Only ever called from a NormalTasks pass.
func Record(host *inventory.Host, playCounter int, handlerName string) {
	host.Notify(playCounter, handlerName)
}

// ShouldRun reports whether a handler task subscribed to handlerName
// should run on host for the currently active playCounter.
func ShouldRun(host *inventory.Host, playCounter int, handlerName string) bool {
	return host.IsNotified(playCounter, handlerName)
}
