package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/jetforge/internal/show"
)

var showFlags runFlags

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print inventory or playbook structure",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFlags.inventory, "inventory", "", "colon-separated inventory path(s)")
	showCmd.Flags().StringVar(&showFlags.playbook, "playbook", "", "colon-separated playbook path(s)")
}

func runShow(cmd *cobra.Command, args []string) error {
	if (showFlags.inventory == "") == (showFlags.playbook == "") {
		return fmt.Errorf("exactly one of --inventory or --playbook is required")
	}
	if showFlags.inventory != "" {
		paths := splitList(showFlags.inventory)
		if err := checkPathsExist(paths); err != nil {
			return err
		}
		inv, err := loadInventoryFlag(&showFlags)
		if err != nil {
			return err
		}
		fmt.Println(show.Inventory(inv))
		return nil
	}

	pbs, err := loadPlaybooksFlag(&showFlags)
	if err != nil {
		return err
	}
	for _, pb := range pbs {
		fmt.Println(show.Playbook(pb))
	}
	return nil
}
