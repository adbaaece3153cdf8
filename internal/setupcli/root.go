// Package setupcli implements the quickenctl commands that manage a
// QuickenCL installation.
package setupcli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quicken-build/quickencl/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "quickenctl",
	Short:        "Manage the QuickenCL compiler wrapper",
	Long:         `Set up and inspect a QuickenCL installation.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(checkCmd)
}
