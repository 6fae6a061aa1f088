package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/loader"
	"github.com/ormasoftchile/jetforge/internal/visitor"
)

// runFlags holds the colon-separated-list flags shared across every
// subcommand that takes them.
type runFlags struct {
	playbook    string
	inventory   string
	groups      string
	hosts       string
	defaultUser string
	threads     int
	batchSize   int
	verbosity   int
}

func addPlaybookFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.playbook, "playbook", "", "colon-separated playbook path(s)")
	cmd.MarkFlagRequired("playbook")
}

func addInventoryFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.inventory, "inventory", "", "colon-separated inventory path(s)")
}

func addSelectionFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.groups, "groups", "", "colon-separated group names to restrict the run to")
	cmd.Flags().StringVar(&f.hosts, "hosts", "", "colon-separated host names to restrict the run to")
}

func addCommonFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.defaultUser, "default-user", "", "default SSH user when a host has no ssh_user")
	cmd.Flags().IntVar(&f.threads, "threads", 0, "worker concurrency cap (accepted but not applied: every host of a task runs concurrently)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "hosts dispatched per batch (accepted but not applied: every host of a task is dispatched at once)")
	cmd.Flags().CountVarP(&f.verbosity, "v", "v", "verbosity (repeatable; accepted but not applied to output)")
}

// splitList splits a colon-separated flag value, returning nil for an
// empty string rather than a one-element slice of "".
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

// checkPathsExist validates every path in a colon-separated flag value
// exists, at parse time.
func checkPathsExist(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("path does not exist: %s", p)
		}
	}
	return nil
}

func loadPlaybooksFlag(f *runFlags) ([]loader.PlaybookFile, error) {
	paths := splitList(f.playbook)
	if err := checkPathsExist(paths); err != nil {
		return nil, err
	}
	return loader.LoadPlaybooks(paths)
}

func loadInventoryFlag(f *runFlags) (*inventory.Inventory, error) {
	paths := splitList(f.inventory)
	if len(paths) == 0 {
		return inventory.New(), nil
	}
	if err := checkPathsExist(paths); err != nil {
		return nil, err
	}
	return loader.LoadInventory(paths)
}

// resolverFromInventory maps a host to its dial address using host vars
// the way a static inventory's host_vars/ would supply them
// (ansible_host/ssh_user/ssh_port), falling back to the host's own name
// and --default-user. A play's ssh_user/ssh_port are not consulted.
func resolverFromInventory(inv *inventory.Inventory, defaultUser string) connection.Resolver {
	return func(hostName string) connection.HostAddress {
		addr := connection.HostAddress{Addr: hostName, User: defaultUser}
		host := inv.Host(hostName)
		if host == nil {
			return addr
		}
		if v, ok := host.Var("ansible_host"); ok {
			if s, ok := v.(string); ok {
				addr.Addr = s
			}
		}
		if v, ok := host.Var("ssh_user"); ok {
			if s, ok := v.(string); ok {
				addr.User = s
			}
		}
		if v, ok := host.Var("ssh_port"); ok {
			switch p := v.(type) {
			case int:
				addr.Port = p
			}
		}
		return addr
	}
}

func newSink(checkMode bool) visitor.Visitor {
	return visitor.NewConsoleSink(os.Stdout, checkMode)
}

func exitCodeFor(runErr error, failedHosts []string) int {
	if runErr != nil {
		return 2
	}
	if len(failedHosts) > 0 {
		return 1
	}
	return 0
}
