package introspect

import (
	"context"

	"github.com/seedkit/seedkit/schema"
)

// Fake is an in-memory Introspector used by tests and by the end-to-end
// scenarios in spec.md §8: it hands back a pre-built schema.Schema rather
// than talking to a real database, which is the correct shape given that
// introspection is specified only as an abstract port (spec.md §1).
type Fake struct {
	Schema *schema.Schema
}

// NewFake wraps an already-constructed schema.Schema as an Introspector.
func NewFake(s *schema.Schema) *Fake {
	return &Fake{Schema: s}
}

// Introspect returns the wrapped schema unchanged.
func (f *Fake) Introspect(ctx context.Context) (*schema.Schema, error) {
	return f.Schema, nil
}

// Builder is a small fluent helper for constructing test schemas without
// hand-writing map literals every time, mirroring the terse table-building
// helpers used throughout the teacher's own test files.
type Builder struct {
	schema *schema.Schema
}

// NewBuilder starts an empty schema.
func NewBuilder() *Builder {
	return &Builder{schema: schema.NewSchema()}
}

// Table adds (or replaces) a table and returns the builder for chaining.
func (b *Builder) Table(t *schema.Table) *Builder {
	b.schema.AddTable(t)
	return b
}

// Enum registers an enum type.
func (b *Builder) Enum(e *schema.EnumType) *Builder {
	b.schema.Enums[e.Name] = e
	return b
}

// Build returns the assembled schema.
func (b *Builder) Build() *schema.Schema {
	return b.schema
}

// Col is a terse constructor for a non-nullable column of the given
// logical kind, used pervasively by tests.
func Col(name string, lt schema.LogicalType) *schema.Column {
	return &schema.Column{Name: name, DeclaredType: string(lt.Kind), Type: lt}
}

// NullableCol is Col but with Nullable set.
func NullableCol(name string, lt schema.LogicalType) *schema.Column {
	c := Col(name, lt)
	c.Nullable = true
	return c
}
