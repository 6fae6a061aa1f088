package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/jetforge/internal/connection"
	"github.com/ormasoftchile/jetforge/internal/playbook"
)

var syntaxFlags runFlags

var syntaxCmd = &cobra.Command{
	Use:   "syntax",
	Short: "Parse all playbooks and run the FSM with no-op connections",
	RunE:  runSyntax,
}

func init() {
	addPlaybookFlags(syntaxCmd, &syntaxFlags)
	addInventoryFlags(syntaxCmd, &syntaxFlags)
	addSelectionFlags(syntaxCmd, &syntaxFlags)
	addCommonFlags(syntaxCmd, &syntaxFlags)
}

func runSyntax(cmd *cobra.Command, args []string) error {
	pbs, err := loadPlaybooksFlag(&syntaxFlags)
	if err != nil {
		return err
	}
	inv, err := loadInventoryFlag(&syntaxFlags)
	if err != nil {
		return err
	}

	factory := connection.NewFactory(connection.KindNoOp, nil)
	v := newSink(true)
	failed, runErr := playbook.Run(context.Background(), pbs, inv, factory, v, playbook.Options{
		SyntaxOnly: true,
		OnlyGroups: splitList(syntaxFlags.groups),
		OnlyHosts:  splitList(syntaxFlags.hosts),
	})
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
	}
	os.Exit(exitCodeFor(runErr, failed))
	return nil
}
