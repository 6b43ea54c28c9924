package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the nested keys Resolve reads from viper, shaped as a
// YAML document an operator can hand-edit and pass via --config (spec.md
// §6). It exists only for (de)serialization; Resolve still reads through
// viper so CLI flags and SEEDKIT_ env vars keep overriding it.
type FileConfig struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Generate struct {
		Seed     int64  `yaml:"seed,omitempty"`
		Rows     int    `yaml:"rows,omitempty"`
		Format   string `yaml:"format,omitempty"`
		Copy     bool   `yaml:"copy,omitempty"`
		Include  []string `yaml:"include,omitempty"`
		Exclude  []string `yaml:"exclude,omitempty"`
		FromLock bool   `yaml:"from_lock,omitempty"`
		Force    bool   `yaml:"force,omitempty"`
		Subset   string `yaml:"subset,omitempty"`
	} `yaml:"generate"`
	Graph struct {
		BreakCycleAt []string `yaml:"break_cycle_at,omitempty"`
	} `yaml:"graph"`
	Tables  map[string]struct {
		Rows int `yaml:"rows"`
	} `yaml:"tables,omitempty"`
	Columns map[string]struct {
		Values  []string  `yaml:"values"`
		Weights []float64 `yaml:"weights,omitempty"`
	} `yaml:"columns,omitempty"`
}

// DefaultFileConfig returns the starter document written by "seedkit config
// init": a database URL placeholder plus the built-in generate defaults,
// spelled out so an operator can see what to override.
func DefaultFileConfig() *FileConfig {
	fc := &FileConfig{}
	fc.Database.URL = "postgres://localhost:5432/app?sslmode=disable"
	d := Default()
	fc.Generate.Rows = d.DefaultRows
	fc.Generate.Format = d.Format
	return fc
}

// WriteExampleConfig marshals fc to path as YAML, failing rather than
// clobbering a file that already exists.
func WriteExampleConfig(path string, fc *FileConfig) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
