package schema

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Fingerprint is the content-addressed hash of a canonicalized schema, used
// for lock-file equality and drift detection (spec.md §4.4). Ported from
// the teacher's internal/fingerprint.SchemaFingerprint.
type Fingerprint struct {
	Hash string `json:"hash"`
}

// canonical is the JSON-stable shape hashObject marshals: maps become
// sorted slices so that Go's randomized map iteration never perturbs the
// hash, satisfying spec.md §3's "canonicalized schema JSON" requirement.
type canonicalColumn struct {
	Name         string      `json:"name"`
	DeclaredType string      `json:"declared_type"`
	Type         LogicalType `json:"logical_type"`
	Nullable     bool        `json:"nullable"`
	Default      Default     `json:"default"`
}

type canonicalTable struct {
	Name        string              `json:"name"`
	Columns     []canonicalColumn   `json:"columns"`
	PrimaryKey  *PrimaryKey         `json:"primary_key,omitempty"`
	Uniques     []*UniqueConstraint `json:"uniques,omitempty"`
	Checks      []*CheckConstraint  `json:"checks,omitempty"`
	ForeignKeys []*ForeignKey       `json:"foreign_keys,omitempty"`
}

type canonicalSchema struct {
	Tables []canonicalTable `json:"tables"`
	Enums  []*EnumType      `json:"enums"`
}

// Canonicalize produces the deterministic, map-free projection of Schema
// that ComputeFingerprint and drift diffing both hash/compare against.
func Canonicalize(s *Schema) canonicalSchema {
	out := canonicalSchema{}
	for _, name := range s.TableNames() {
		t := s.Tables[name]
		ct := canonicalTable{
			Name:        t.Name,
			PrimaryKey:  t.PrimaryKey,
			Uniques:     t.Uniques,
			Checks:      t.Checks,
			ForeignKeys: t.ForeignKeys,
		}
		for _, c := range t.Columns {
			ct.Columns = append(ct.Columns, canonicalColumn{
				Name:         c.Name,
				DeclaredType: c.DeclaredType,
				Type:         c.Type,
				Nullable:     c.Nullable,
				Default:      c.Default,
			})
		}
		out.Tables = append(out.Tables, ct)
	}
	for _, name := range s.EnumNames() {
		out.Enums = append(out.Enums, s.Enums[name])
	}
	return out
}

// ComputeFingerprint hashes the canonicalized form of s with SHA-256.
func ComputeFingerprint(s *Schema) (*Fingerprint, error) {
	data, err := json.Marshal(Canonicalize(s))
	if err != nil {
		return nil, fmt.Errorf("marshal canonical schema: %w", err)
	}
	sum := sha256.Sum256(data)
	return &Fingerprint{Hash: fmt.Sprintf("%x", sum)}, nil
}

// Equal reports whether two fingerprints hash to the same value.
func (f *Fingerprint) Equal(other *Fingerprint) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Hash == other.Hash
}

// String renders a human-readable preview, matching the teacher's
// truncated-hash display.
func (f *Fingerprint) String() string {
	if f == nil {
		return "<nil>"
	}
	if len(f.Hash) >= 16 {
		return f.Hash[:16]
	}
	return f.Hash
}
