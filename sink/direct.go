package sink

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Direct writes straight into the target database over the same
// connection introspection used, via pgx's CopyFrom for table batches and
// plain parameterized UPDATEs for deferred updates (spec.md §5 "direct").
// Every batch runs inside its own transaction so a failure partway through
// a table never leaves the database half-seeded.
type Direct struct {
	ctx  context.Context
	pool *pgxpool.Pool
}

func NewDirect(ctx context.Context, pool *pgxpool.Pool) *Direct {
	return &Direct{ctx: ctx, pool: pool}
}

func (d *Direct) WriteTableBatch(batch TableBatch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	tx, err := d.pool.Begin(d.ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", batch.Table, err)
	}
	defer tx.Rollback(d.ctx)

	rows := make([][]interface{}, len(batch.Rows))
	for i, row := range batch.Rows {
		values := make([]interface{}, len(batch.Columns))
		for j, col := range batch.Columns {
			values[j] = row[col]
		}
		rows[i] = values
	}

	_, err = tx.CopyFrom(d.ctx, pgx.Identifier{batch.Table}, batch.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", batch.Table, err)
	}
	return tx.Commit(d.ctx)
}

func (d *Direct) WriteDeferredUpdate(batch UpdateBatch) error {
	tx, err := d.pool.Begin(d.ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for %s update: %w", batch.Table, err)
	}
	defer tx.Rollback(d.ctx)

	for _, upd := range batch.Updates {
		sets := make([]string, len(batch.Columns))
		args := make([]interface{}, 0, len(batch.Columns)+len(upd.Key))
		for i, c := range batch.Columns {
			args = append(args, upd.Values[c])
			sets[i] = fmt.Sprintf(`"%s" = $%d`, c, len(args))
		}

		keyCols := make([]string, 0, len(upd.Key))
		for c := range upd.Key {
			keyCols = append(keyCols, c)
		}
		sort.Strings(keyCols)

		wheres := make([]string, len(keyCols))
		for i, c := range keyCols {
			args = append(args, upd.Key[c])
			wheres[i] = fmt.Sprintf(`"%s" = $%d`, c, len(args))
		}

		query := fmt.Sprintf(`UPDATE "%s" SET %s WHERE %s`, batch.Table, strings.Join(sets, ", "), strings.Join(wheres, " AND "))
		if _, err := tx.Exec(d.ctx, query, args...); err != nil {
			return fmt.Errorf("update %s: %w", batch.Table, err)
		}
	}
	return tx.Commit(d.ctx)
}

func (d *Direct) Finalize() error {
	return nil
}
