package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/seedkit/seedkit/config"
)

func TestResolve_RequiresDatabaseURL(t *testing.T) {
	v := viper.New()
	_, err := config.Resolve(v)
	require.Error(t, err)
}

func TestResolve_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("database.url", "postgres://localhost/seedkit")

	cfg, err := config.Resolve(v)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.DefaultRows)
	require.Equal(t, "sql-insert", cfg.Format)
	require.Equal(t, 0.05, cfg.NullProbability)
	require.Equal(t, 64, cfg.UniqueResampleBudget)
}

func TestResolve_OverridesAndTableRows(t *testing.T) {
	v := viper.New()
	v.Set("database.url", "postgres://localhost/seedkit")
	v.Set("generate.seed", int64(99))
	v.Set("generate.rows", 25)
	v.Set("generate.format", "JSON")
	v.Set("tables.orders.rows", 100)
	v.Set("columns", map[string]interface{}{
		"orders.status": map[string]interface{}{
			"values":  []interface{}{"pending", "paid"},
			"weights": []interface{}{0.2, 0.8},
		},
	})
	v.Set("graph.break_cycle_at", []string{"departments.head_id"})

	cfg, err := config.Resolve(v)
	require.NoError(t, err)
	require.Equal(t, int64(99), cfg.Seed)
	require.Equal(t, 25, cfg.DefaultRows)
	require.Equal(t, "json", cfg.Format)
	require.Equal(t, 100, cfg.RowsFor("orders"))
	require.Equal(t, 25, cfg.RowsFor("users"))
	require.Equal(t, []string{"pending", "paid"}, cfg.ColumnValues["orders.status"])
	require.Equal(t, []float64{0.2, 0.8}, cfg.ColumnWeights["orders.status"])
	require.True(t, cfg.BreakCycleAt["departments.head_id"])
}

func TestResolve_RejectsUnsupportedFormat(t *testing.T) {
	v := viper.New()
	v.Set("database.url", "postgres://localhost/seedkit")
	v.Set("generate.format", "parquet")

	_, err := config.Resolve(v)
	require.Error(t, err)
}
