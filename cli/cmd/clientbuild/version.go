package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clientbuild.dev/cli/cmd/clientbuild/root"
	"clientbuild.dev/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Reports the current version of clientbuild",

	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("clientbuild version", version.String())
	},
}

func init() {
	root.Cmd.AddCommand(versionCmd)
}
