package cmd

import (
	"context"
	"fmt"

	"github.com/seedkit/seedkit/cmd/util"
	"github.com/seedkit/seedkit/internal/logger"
	"github.com/seedkit/seedkit/introspect"
	"github.com/seedkit/seedkit/lockfile"
	"github.com/seedkit/seedkit/seederr"
	"github.com/spf13/cobra"
)

// CheckCmd is "seedkit check": introspect the target database and compare
// its current fingerprint against the one recorded in a lock file, exiting
// non-zero if they've drifted.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Detect schema drift against a lock file",
	RunE:  runCheck,
}

func init() {
	flags := CheckCmd.Flags()
	flags.String("database-url", "", "PostgreSQL connection string (required)")
	flags.String("lock", defaultLockPath, "Path to the lock file")
	flags.String("db-schema", "public", "Database schema to introspect")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, err := util.BindConfig(cmd)
	if err != nil {
		return seederr.ConfigInvalid(err)
	}
	lockPath, _ := cmd.Flags().GetString("lock")
	dbSchema, _ := cmd.Flags().GetString("db-schema")

	ctx := context.Background()
	pool, err := util.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	s, err := introspect.NewPostgres(pool, dbSchema).Introspect(ctx)
	if err != nil {
		return seederr.IntrospectionFailed(err)
	}

	lock, err := lockfile.Read(lockPath)
	if err != nil {
		return fmt.Errorf("read lock file: %w", err)
	}

	report, err := lockfile.Check(s, lock)
	if err != nil {
		return err
	}

	if report.Drifted {
		logger.Get().Warn("schema has drifted from lock file",
			"recorded", report.RecordedFingerprint, "current", report.CurrentFingerprint)
		return fmt.Errorf("schema drift detected: recorded fingerprint %s, current %s",
			report.RecordedFingerprint[:16], report.CurrentFingerprint[:16])
	}

	fmt.Println("no drift detected")
	return nil
}
