package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// Profile is a distribution profile loaded from --subset: a per-column
// weighted value set an operator can layer on top of the default uniform
// generation (spec.md §6 "subset profiles"). It shares its column-keying
// convention ("table.column") with Config.ColumnValues/ColumnWeights.
type Profile struct {
	Columns map[string]ProfileColumn `json:"columns"`
}

// ProfileColumn is one column's weighted value set.
type ProfileColumn struct {
	Values  []string  `json:"values"`
	Weights []float64 `json:"weights,omitempty"`
}

// LoadProfile reads and parses a distribution profile JSON file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// ApplyProfile layers a loaded Profile's column overrides onto cfg,
// without clobbering an explicit config.columns.*.values entry -- those
// always win over a --subset profile (spec.md §9 Open Question 1).
func (c *Config) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	for key, col := range p.Columns {
		if _, explicit := c.ColumnValues[key]; explicit {
			continue
		}
		c.ColumnValues[key] = col.Values
		if len(col.Weights) == len(col.Values) {
			c.ColumnWeights[key] = col.Weights
		}
	}
}

// MaskPII derives a stable, non-reversible replacement for a PII-classified
// value: SHA-256 of the raw value, truncated to 16 hex characters (spec.md
// §9 Open Question 3). No sink or generator calls it: PII-kind columns are
// emitted as their synthesized values, unmasked, including values that
// come from a --subset profile.
func MaskPII(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}
