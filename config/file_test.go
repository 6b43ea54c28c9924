package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seedkit/seedkit/config"
)

func TestWriteExampleConfig_RoundTripsAsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedkit.yaml")
	require.NoError(t, config.WriteExampleConfig(path, config.DefaultFileConfig()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc config.FileConfig
	require.NoError(t, yaml.Unmarshal(data, &fc))
	require.Equal(t, "sql-insert", fc.Generate.Format)
	require.Equal(t, 10, fc.Generate.Rows)
}

func TestWriteExampleConfig_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedkit.yaml")
	require.NoError(t, config.WriteExampleConfig(path, config.DefaultFileConfig()))

	err := config.WriteExampleConfig(path, config.DefaultFileConfig())
	require.Error(t, err)
}
