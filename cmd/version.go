package cmd

import (
	"fmt"

	"github.com/seedkit/seedkit/internal/version"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print seedkit's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("seedkit %s (%s) commit=%s built=%s\n",
			version.App(), version.Platform(), version.GetGitCommit(), version.GetBuildDate())
		return nil
	},
}
