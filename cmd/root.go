package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/seedkit/seedkit/internal/logger"
	"github.com/seedkit/seedkit/internal/version"
	"github.com/spf13/cobra"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "seedkit",
	Short: "Deterministic, constraint-satisfying seed data for relational schemas",
	Long: fmt.Sprintf(`seedkit introspects a PostgreSQL schema and generates rows that respect
its primary keys, foreign keys, unique constraints, and check constraints.

Version: %s %s

Commands:
  generate  Generate and write seed data
  check     Detect drift between a schema and its lock file
  version   Print version information

Use "seedkit [command] --help" for more information about a command.`,
		version.App(), version.Platform()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(GenerateCmd)
	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
