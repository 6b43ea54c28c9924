package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedkit/seedkit/config"
)

func writeProfile(t *testing.T, p config.Profile) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadProfile_RoundTrip(t *testing.T) {
	path := writeProfile(t, config.Profile{
		Columns: map[string]config.ProfileColumn{
			"users.plan": {Values: []string{"free", "pro"}, Weights: []float64{0.7, 0.3}},
		},
	})

	p, err := config.LoadProfile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"free", "pro"}, p.Columns["users.plan"].Values)
}

func TestApplyProfile_ExplicitValuesWin(t *testing.T) {
	cfg := config.Default()
	cfg.ColumnValues["users.plan"] = []string{"enterprise"}

	profile := &config.Profile{
		Columns: map[string]config.ProfileColumn{
			"users.plan":   {Values: []string{"free", "pro"}, Weights: []float64{0.7, 0.3}},
			"users.status": {Values: []string{"active", "inactive"}},
		},
	}
	cfg.ApplyProfile(profile)

	require.Equal(t, []string{"enterprise"}, cfg.ColumnValues["users.plan"])
	require.Equal(t, []string{"active", "inactive"}, cfg.ColumnValues["users.status"])
}

func TestMaskPII_StableAndNonReversible(t *testing.T) {
	a := config.MaskPII("ada@example.com")
	b := config.MaskPII("ada@example.com")
	c := config.MaskPII("grace@example.com")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 16)
	require.NotContains(t, a, "@")
}
