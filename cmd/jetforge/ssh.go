package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/playbook"
)

var checkSSHFlags runFlags
var sshFlags runFlags

var checkSSHCmd = &cobra.Command{
	Use:   "check-ssh",
	Short: "Query-only dry run against the inventory via remote shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSSH(&checkSSHFlags, true)
	},
}

var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "Full run against the inventory via remote shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSSH(&sshFlags, false)
	},
}

func init() {
	addPlaybookFlags(checkSSHCmd, &checkSSHFlags)
	addInventoryFlags(checkSSHCmd, &checkSSHFlags)
	checkSSHCmd.MarkFlagRequired("inventory")
	addSelectionFlags(checkSSHCmd, &checkSSHFlags)
	addCommonFlags(checkSSHCmd, &checkSSHFlags)

	addPlaybookFlags(sshCmd, &sshFlags)
	addInventoryFlags(sshCmd, &sshFlags)
	sshCmd.MarkFlagRequired("inventory")
	addSelectionFlags(sshCmd, &sshFlags)
	addCommonFlags(sshCmd, &sshFlags)
}

func runSSH(f *runFlags, checkMode bool) error {
	pbs, err := loadPlaybooksFlag(f)
	if err != nil {
		return err
	}
	inv, err := loadInventoryFlag(f)
	if err != nil {
		return err
	}

	factory := connection.NewFactory(connection.KindRemote, resolverFromInventory(inv, f.defaultUser))
	v := newSink(checkMode)
	failed, runErr := playbook.Run(context.Background(), pbs, inv, factory, v, playbook.Options{
		OnlyGroups: splitList(f.groups),
		OnlyHosts:  splitList(f.hosts),
	})
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
	}
	os.Exit(exitCodeFor(runErr, failed))
	return nil
}
