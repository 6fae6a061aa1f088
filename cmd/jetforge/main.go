// Command jetforge is a single-binary CLI with one subcommand per run
// mode. Grounded on cmd/gert-kernel/main.go's
// verb-per-subcommand layout.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jetforge",
	Short: "A parallel configuration-management orchestrator",
}

func init() {
	rootCmd.AddCommand(syntaxCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(checkLocalCmd)
	rootCmd.AddCommand(localCmd)
	rootCmd.AddCommand(checkSSHCmd)
	rootCmd.AddCommand(sshCmd)
	rootCmd.AddCommand(schemaCmd)
}
