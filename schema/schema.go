// Package schema is the normalized, driver-independent representation of a
// relational schema: the root aggregate that introspection produces and
// every other package (graph, classify, generate, lockfile) consumes.
package schema

import "sort"

// Schema is the root aggregate returned by introspection. Owns an ordered
// mapping from table name to Table and the set of enum types declared in
// the schema.
type Schema struct {
	Tables map[string]*Table         `json:"tables"`
	Enums  map[string]*EnumType      `json:"enums"`
}

// NewSchema returns an empty Schema ready for population.
func NewSchema() *Schema {
	return &Schema{
		Tables: make(map[string]*Table),
		Enums:  make(map[string]*EnumType),
	}
}

// EnumType is a PostgreSQL-style enumerated type: a name plus its ordered
// set of labels.
type EnumType struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
}

// TableNames returns table names sorted lexicographically, the
// deterministic iteration order required throughout the pipeline.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnumNames returns enum type names sorted lexicographically.
func (s *Schema) EnumNames() []string {
	names := make([]string, 0, len(s.Enums))
	for name := range s.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the named table, or nil if it does not exist.
func (s *Schema) Table(name string) *Table {
	return s.Tables[name]
}

// AddTable registers a table under its own name.
func (s *Schema) AddTable(t *Table) {
	if s.Tables == nil {
		s.Tables = make(map[string]*Table)
	}
	s.Tables[t.Name] = t
}

// Table is a single relation: its column list, primary key, unique
// constraints, check constraints, and outbound foreign keys.
//
// Invariant: every column referenced by PrimaryKey is non-nullable; every
// ForeignKey's local and remote column lists have equal arity.
type Table struct {
	Name        string             `json:"name"`
	Columns     []*Column          `json:"columns"` // declaration order
	PrimaryKey  *PrimaryKey        `json:"primary_key,omitempty"`
	Uniques     []*UniqueConstraint `json:"uniques,omitempty"`
	Checks      []*CheckConstraint `json:"checks,omitempty"`
	ForeignKeys []*ForeignKey      `json:"foreign_keys,omitempty"`
}

// Column looks up a column by name within the table, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey is an ordered, possibly composite, column list.
type PrimaryKey struct {
	Columns []string `json:"columns"`
}

// UniqueConstraint is an ordered column list (simple or composite) that
// must hold distinct tuples across all generated rows.
type UniqueConstraint struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Column describes a single table column.
type Column struct {
	Name         string      `json:"name"`
	DeclaredType string      `json:"declared_type"` // raw SQL type text
	Type         LogicalType `json:"logical_type"`
	Nullable     bool        `json:"nullable"`
	Default      Default     `json:"default"`
	Kind         SemanticKind `json:"semantic_kind,omitempty"` // set after classification
}

// DefaultKind enumerates the recognized shapes of a column default.
type DefaultKind string

const (
	DefaultNone          DefaultKind = "none"
	DefaultLiteral       DefaultKind = "literal"
	DefaultAutoIncrement DefaultKind = "auto_increment"
	DefaultFunctionCall  DefaultKind = "function_call"
)

// Default is a column's classified default expression: the raw text plus
// the classified shape (none / literal / auto-increment / function call).
type Default struct {
	Kind    DefaultKind `json:"kind"`
	Raw     string      `json:"raw,omitempty"`
	Literal string      `json:"literal,omitempty"`
	Func    string       `json:"func,omitempty"`
}
