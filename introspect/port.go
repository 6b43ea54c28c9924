// Package introspect defines the abstract introspection port and its
// implementations. The port is the only thing the rest of seedkit depends
// on; the concrete database drivers are out of scope for the core pipeline
// (spec.md §1) and are treated purely as this interface's adapters.
package introspect

import (
	"context"

	"github.com/seedkit/seedkit/schema"
)

// Introspector enumerates a live (or fake) schema and normalizes it into
// schema.Schema. Implementations must return deterministic ordering:
// tables by name, columns by ordinal position (spec.md §6).
type Introspector interface {
	Introspect(ctx context.Context) (*schema.Schema, error)
}
