// Package sink defines the output contract generated rows are written
// through and its concrete encoders: SQL INSERT, SQL COPY, JSON, CSV, and a
// pgx-mediated direct-insert sink (spec.md §5).
package sink

// TableBatch is one table's worth of freshly generated rows, in column
// declaration order, ready for a sink to encode.
type TableBatch struct {
	Table   string
	Columns []string
	Rows    []map[string]interface{}
}

// RowUpdate targets a single already-emitted row (identified by its own
// primary key) and carries the foreign-key column values a deferred update
// step resolves once the cycle's other side has been emitted.
type RowUpdate struct {
	Key    map[string]interface{}
	Values map[string]interface{}
}

// UpdateBatch is one deferred-update step's worth of row updates (spec.md
// §4.1 "deferred update"): set Columns on Table to point at Parent, for
// every row in Updates.
type UpdateBatch struct {
	Table   string
	Columns []string
	Parent  string
	Updates []RowUpdate
}

// OutputSink is the destination contract every encoder implements. Tables
// arrive in plan order; WriteTableBatch is always called for every Emit
// step before any WriteDeferredUpdate referencing it. Finalize flushes and
// closes the sink, and is always called exactly once, last.
type OutputSink interface {
	WriteTableBatch(batch TableBatch) error
	WriteDeferredUpdate(batch UpdateBatch) error
	Finalize() error
}
