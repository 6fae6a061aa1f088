package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/playbook"
)

var checkLocalFlags runFlags
var localFlags runFlags

var checkLocalCmd = &cobra.Command{
	Use:   "check-local",
	Short: "Query-only dry run against the local machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocal(&checkLocalFlags, true)
	},
}

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Full run against the local machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocal(&localFlags, false)
	},
}

func init() {
	addPlaybookFlags(checkLocalCmd, &checkLocalFlags)
	addCommonFlags(checkLocalCmd, &checkLocalFlags)

	addPlaybookFlags(localCmd, &localFlags)
	addCommonFlags(localCmd, &localFlags)
}

// runLocal drives every play against a synthetic single-host "localhost"
// inventory — --inventory is never registered on these two subcommands,
// since the target is always the machine the CLI runs on.
func runLocal(f *runFlags, checkMode bool) error {
	pbs, err := loadPlaybooksFlag(f)
	if err != nil {
		return err
	}

	inv := inventory.New()
	inv.FindOrCreateHost("localhost")
	inv.Group(inventory.AllGroupName).AddHost("localhost")
	for _, pb := range pbs {
		for _, play := range pb.Plays {
			for _, g := range play.Groups {
				inv.FindOrCreateGroup(g).AddHost("localhost")
			}
		}
	}

	factory := connection.NewFactory(connection.KindLocal, nil)
	v := newSink(checkMode)
	failed, runErr := playbook.Run(context.Background(), pbs, inv, factory, v, playbook.Options{})
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
	}
	os.Exit(exitCodeFor(runErr, failed))
	return nil
}
