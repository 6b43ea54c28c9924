// Package lockfile persists and reloads the per-run record seedkit writes
// alongside its output: the schema fingerprint a regeneration or drift
// check compares against, the resolved seed, row counts, and the
// classifier/oracle decisions that drove generation (spec.md §4.4).
package lockfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seedkit/seedkit/schema"
)

// LockFile is the on-disk record of one generation run.
type LockFile struct {
	Version            int                         `json:"version"`
	Fingerprint        string                      `json:"fingerprint"`
	Seed               int64                       `json:"seed"`
	Format             string                      `json:"format"`
	RowCounts          map[string]int              `json:"row_counts"`
	ClassifierDecisions map[string]schema.SemanticKind `json:"classifier_decisions"`
	OracleCache        map[string]schema.SemanticKind `json:"oracle_cache,omitempty"`
}

const currentVersion = 1

// New builds the LockFile for a completed run.
func New(fp *schema.Fingerprint, seed int64, format string, rowCounts map[string]int, decisions map[string]schema.SemanticKind, oracleCache map[string]schema.SemanticKind) *LockFile {
	return &LockFile{
		Version:             currentVersion,
		Fingerprint:         fp.Hash,
		Seed:                seed,
		Format:              format,
		RowCounts:           rowCounts,
		ClassifierDecisions: decisions,
		OracleCache:         oracleCache,
	}
}

// Write serializes lf as indented JSON to path, overwriting any existing
// file (spec.md §4.4 "the lock file is written after every successful
// generate run").
func Write(path string, lf *LockFile) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write lock file %s: %w", path, err)
	}
	return nil
}

// Read loads and parses the lock file at path.
func Read(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lock file %s: %w", path, err)
	}
	var lf LockFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse lock file %s: %w", path, err)
	}
	return &lf, nil
}
