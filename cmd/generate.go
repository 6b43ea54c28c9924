package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seedkit/seedkit/classify"
	"github.com/seedkit/seedkit/cmd/util"
	"github.com/seedkit/seedkit/config"
	"github.com/seedkit/seedkit/generate"
	"github.com/seedkit/seedkit/graph"
	"github.com/seedkit/seedkit/internal/logger"
	"github.com/seedkit/seedkit/introspect"
	"github.com/seedkit/seedkit/lockfile"
	"github.com/seedkit/seedkit/schema"
	"github.com/seedkit/seedkit/seederr"
	"github.com/seedkit/seedkit/sink"
	"github.com/spf13/cobra"
)

const defaultLockPath = "seedkit.lock.json"

// GenerateCmd is "seedkit generate": introspect the target database,
// classify its columns, plan an insertion order that breaks any foreign-key
// cycles, synthesize constraint-satisfying rows, and write them through the
// configured output sink.
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and write seed data for a database's schema",
	RunE:  runGenerate,
}

func init() {
	flags := GenerateCmd.Flags()
	flags.String("database-url", "", "PostgreSQL connection string (required)")
	flags.Int64("seed", 0, "Deterministic generation seed")
	flags.Int("rows", 0, "Default row count per table (default 10)")
	flags.String("format", "", "Output format: sql-insert, sql-copy, json, csv, direct (default sql-insert)")
	flags.Bool("copy", false, "Shorthand for --format=sql-copy")
	flags.StringSlice("include", nil, "Only generate these tables")
	flags.StringSlice("exclude", nil, "Skip these tables")
	flags.Bool("from-lock", false, "Regenerate using the seed/row-counts recorded in the lock file")
	flags.Bool("force", false, "Regenerate even if the schema has drifted from the lock file")
	flags.String("subset", "", "Path to a distribution profile JSON file")
	flags.String("config", "", "Path to a YAML config file")
	flags.String("out", "", "Output file path (sql-insert/sql-copy/json); defaults to stdout")
	flags.String("out-dir", "seed", "Output directory for csv format")
	flags.String("lock", defaultLockPath, "Path to the lock file")
	flags.String("db-schema", "public", "Database schema to introspect")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, _, err := util.BindConfig(cmd)
	if err != nil {
		return seederr.ConfigInvalid(err)
	}

	dbSchema, _ := cmd.Flags().GetString("db-schema")
	lockPath, _ := cmd.Flags().GetString("lock")

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
	s = filterTables(s, cfg.Include, cfg.Exclude)

	var lock *lockfile.LockFile
	if cfg.FromLock {
		lock, err = lockfile.Read(lockPath)
		if err != nil {
			return fmt.Errorf("read lock file: %w", err)
		}
		if !cfg.Force {
			if err := lockfile.RequireNoDrift(s, lock, "(schema)"); err != nil {
				return fmt.Errorf("%w (pass --force to regenerate anyway)", err)
			}
		}
		cfg.Seed = lock.Seed
		for table, n := range lock.RowCounts {
			cfg.TableRows[table] = n
		}
	}

	oracleCache := classify.NewCache(nil, fingerprintOf(s), 0)
	decisions := classify.Classify(s, oracleCache)

	plan, err := graph.Plan(s, graph.BreakCycleConfig{BreakCycleAt: cfg.BreakCycleAt})
	if err != nil {
		return err
	}

	batches, updates, err := generate.Generate(s, plan, cfg, cfg.Seed)
	if err != nil {
		return err
	}

	out, closeOut, err := openSink(cmd, cfg, ctx, pool)
	if err != nil {
		return err
	}
	if closeOut != nil {
		defer closeOut()
	}

	if err := writeAll(out, batches, updates); err != nil {
		return err
	}

	rowCounts := map[string]int{}
	for _, t := range s.TableNames() {
		rowCounts[t] = cfg.RowsFor(t)
	}
	kinds := map[string]schema.SemanticKind{}
	for key, d := range decisions {
		kinds[key] = d.Kind
	}
	fp, err := schema.ComputeFingerprint(s)
	if err != nil {
		return err
	}
	lf := lockfile.New(fp, cfg.Seed, cfg.Format, rowCounts, kinds, oracleCache.Entries())
	if err := lockfile.Write(lockPath, lf); err != nil {
		return err
	}

	logger.Get().Info("generated seed data", "tables", len(batches), "deferred_updates", len(updates), "format", cfg.Format)
	return nil
}

func fingerprintOf(s *schema.Schema) string {
	fp, err := schema.ComputeFingerprint(s)
	if err != nil {
		return ""
	}
	return fp.Hash
}

func filterTables(s *schema.Schema, include, exclude []string) *schema.Schema {
	if len(include) == 0 && len(exclude) == 0 {
		return s
	}
	includeSet := toSet(include)
	excludeSet := toSet(exclude)

	out := schema.NewSchema()
	out.Enums = s.Enums
	for _, name := range s.TableNames() {
		if len(includeSet) > 0 && !includeSet[name] {
			continue
		}
		if excludeSet[name] {
			continue
		}
		out.AddTable(s.Tables[name])
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := map[string]bool{}
	for _, v := range values {
		set[v] = true
	}
	return set
}

func writeAll(out sink.OutputSink, batches []sink.TableBatch, updates []sink.UpdateBatch) error {
	for _, b := range batches {
		if err := out.WriteTableBatch(b); err != nil {
			return seederr.OutputFailed(b.Table, err)
		}
	}
	for _, u := range updates {
		if err := out.WriteDeferredUpdate(u); err != nil {
			return seederr.OutputFailed(u.Table, err)
		}
	}
	if err := out.Finalize(); err != nil {
		return seederr.OutputFailed("(finalize)", err)
	}
	return nil
}

// openSink resolves cfg.Format (and the --copy shorthand) into a concrete
// sink.OutputSink, returning a cleanup func the caller should defer (nil if
// there is nothing to close).
func openSink(cmd *cobra.Command, cfg *config.Config, ctx context.Context, pool *pgxpool.Pool) (sink.OutputSink, func(), error) {
	format := cfg.Format
	if cfg.Copy {
		format = "sql-copy"
	}

	switch format {
	case "direct":
		return sink.NewDirect(ctx, pool), nil, nil
	case "csv":
		outDir, _ := cmd.Flags().GetString("out-dir")
		return sink.NewCSV(outDir), nil, nil
	case "json", "sql-copy", "sql-insert", "":
		w, closeFn, err := openOut(cmd)
		if err != nil {
			return nil, nil, err
		}
		switch format {
		case "json":
			return sink.NewJSON(w), closeFn, nil
		case "sql-copy":
			return sink.NewSQLCopy(w), closeFn, nil
		default:
			return sink.NewSQLInsert(w), closeFn, nil
		}
	default:
		return nil, nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// openOut resolves --out to a file, or falls back to stdout when unset.
func openOut(cmd *cobra.Command) (*os.File, func(), error) {
	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
