// Package config resolves seedkit's configuration surface (spec.md §6)
// from CLI flags, environment variables, a local .env file, and a config
// file, in that precedence order, via spf13/viper bound to the cobra
// command's flag set (the same layering used across the retrieved
// fluxbase/pgedge-anonymizer/nethalo-dbsafe stacks).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully resolved configuration the pipeline runs with.
type Config struct {
	DatabaseURL string

	Seed            int64
	DefaultRows     int
	TableRows       map[string]int // table -> row count override
	Format          string         // sql-insert | sql-copy | json | csv | direct
	Copy            bool
	Include         []string
	Exclude         []string
	FromLock        bool
	Force           bool
	SubsetProfile   string // path to a distribution profile JSON file

	NullProbability      float64 // default 0.05
	UniqueResampleBudget int     // K, default 64
	UniqueTotalBudget    int     // M, default 1000
	CheckRejectionBudget int     // default 1000

	BreakCycleAt map[string]bool // "table.column" -> true

	ColumnValues  map[string][]string  // "table.column" -> explicit enumerated values
	ColumnWeights map[string][]float64 // "table.column" -> weights aligned to ColumnValues
}

// Default returns the zero-value-safe defaults named throughout spec.md
// §4.3/§6: 10 rows per table, 5% null probability, resample budget 64.
func Default() *Config {
	return &Config{
		DefaultRows:          10,
		Format:               "sql-insert",
		NullProbability:      0.05,
		UniqueResampleBudget: 64,
		UniqueTotalBudget:    1000,
		CheckRejectionBudget: 1000,
		TableRows:            map[string]int{},
		BreakCycleAt:         map[string]bool{},
		ColumnValues:         map[string][]string{},
		ColumnWeights:        map[string][]float64{},
	}
}

// RowsFor returns the resolved row count for table: an explicit
// tables.<name>.rows override, else generate.rows, else the default of 10
// (spec.md §4.3 "Row counts").
func (c *Config) RowsFor(table string) int {
	if n, ok := c.TableRows[table]; ok {
		return n
	}
	return c.DefaultRows
}

// Resolve builds a Config from a bound viper instance. v must already have
// had flags bound via BindPFlags, the environment prefix set, and the
// config/env files loaded by the caller (cmd/util), so Resolve itself only
// performs the final precedence-ordered read plus validation.
func Resolve(v *viper.Viper) (*Config, error) {
	cfg := Default()

	cfg.DatabaseURL = v.GetString("database.url")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database.url is required")
	}

	if v.IsSet("generate.seed") {
		cfg.Seed = v.GetInt64("generate.seed")
	}
	if v.IsSet("generate.rows") {
		cfg.DefaultRows = v.GetInt("generate.rows")
	}
	if v.IsSet("generate.format") {
		cfg.Format = strings.ToLower(v.GetString("generate.format"))
	}
	cfg.Copy = v.GetBool("generate.copy")
	cfg.Include = v.GetStringSlice("generate.include")
	cfg.Exclude = v.GetStringSlice("generate.exclude")
	cfg.FromLock = v.GetBool("generate.from_lock")
	cfg.Force = v.GetBool("generate.force")
	cfg.SubsetProfile = v.GetString("generate.subset")

	for table, sub := range v.GetStringMap("tables") {
		if m, ok := sub.(map[string]interface{}); ok {
			if rows, ok := m["rows"]; ok {
				cfg.TableRows[table] = toInt(rows)
			}
		}
	}

	for key, sub := range v.GetStringMap("columns") {
		m, ok := sub.(map[string]interface{})
		if !ok {
			continue
		}
		if values, ok := m["values"].([]interface{}); ok {
			for _, val := range values {
				cfg.ColumnValues[key] = append(cfg.ColumnValues[key], fmt.Sprintf("%v", val))
			}
		}
		if weights, ok := m["weights"].([]interface{}); ok {
			for _, w := range weights {
				cfg.ColumnWeights[key] = append(cfg.ColumnWeights[key], toFloat(w))
			}
		}
	}

	for _, col := range v.GetStringSlice("graph.break_cycle_at") {
		cfg.BreakCycleAt[col] = true
	}

	if cfg.Format != "sql-insert" && cfg.Format != "sql-copy" && cfg.Format != "json" && cfg.Format != "csv" && cfg.Format != "direct" {
		return nil, fmt.Errorf("unsupported generate.format %q", cfg.Format)
	}

	return cfg, nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
