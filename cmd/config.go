package cmd

import (
	"fmt"

	"github.com/seedkit/seedkit/config"
	"github.com/spf13/cobra"
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage seedkit's YAML config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter YAML config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	ConfigCmd.AddCommand(configInitCmd)
	RootCmd.AddCommand(ConfigCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "seedkit.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.WriteExampleConfig(path, config.DefaultFileConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
