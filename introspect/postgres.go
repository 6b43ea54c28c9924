package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seedkit/seedkit/internal/logger"
	"github.com/seedkit/seedkit/schema"
	"golang.org/x/sync/errgroup"
)

// Postgres is the concrete, pgx-backed Introspector. It normalizes
// information_schema/pg_catalog rows into schema.Schema, the same job as
// the teacher's ir.Inspector.BuildIR, trimmed to exactly the
// columns/constraints/enum-types seedkit's pipeline consumes (no views,
// functions, triggers, or RLS policies -- those are out of spec.md's
// scope).
type Postgres struct {
	pool       *pgxpool.Pool
	targetSchema string
}

// NewPostgres builds a Postgres introspector against the given connection
// pool, targeting a single named schema (defaults handled by the caller).
func NewPostgres(pool *pgxpool.Pool, targetSchema string) *Postgres {
	if targetSchema == "" {
		targetSchema = "public"
	}
	return &Postgres{pool: pool, targetSchema: targetSchema}
}

// Introspect builds the normalized schema.Schema, running the independent
// per-table-detail queries concurrently via errgroup, mirroring the
// teacher's queryGroup concurrency pattern in ir/inspector.go.
func (p *Postgres) Introspect(ctx context.Context) (*schema.Schema, error) {
	out := schema.NewSchema()

	if err := p.loadEnums(ctx, out); err != nil {
		return nil, fmt.Errorf("load enums: %w", err)
	}

	tableNames, err := p.loadTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load table names: %w", err)
	}
	for _, name := range tableNames {
		out.AddTable(&schema.Table{Name: name})
	}

	if logger.IsDebug() {
		logger.Get().Debug("fanning out per-table introspection queries",
			"schema", p.targetSchema, "tables", strings.Join(tableNames, ","))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.loadColumns(gctx, out) })
	g.Go(func() error { return p.loadPrimaryKeys(gctx, out) })
	g.Go(func() error { return p.loadUniques(gctx, out) })
	g.Go(func() error { return p.loadChecks(gctx, out) })
	g.Go(func() error { return p.loadForeignKeys(gctx, out) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Get().Debug("introspected schema", "schema", p.targetSchema, "tables", len(out.Tables))
	return out, nil
}

func (p *Postgres) loadTableNames(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, p.targetSchema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (p *Postgres) loadEnums(ctx context.Context, out *schema.Schema) error {
	rows, err := p.pool.Query(ctx, `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1
		ORDER BY t.typname, e.enumsortorder`, p.targetSchema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var typeName, label string
		if err := rows.Scan(&typeName, &label); err != nil {
			return err
		}
		enum, ok := out.Enums[typeName]
		if !ok {
			enum = &schema.EnumType{Name: typeName}
			out.Enums[typeName] = enum
		}
		enum.Labels = append(enum.Labels, label)
	}
	return rows.Err()
}

func (p *Postgres) loadColumns(ctx context.Context, out *schema.Schema) error {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name, column_name, data_type, udt_name, is_nullable,
		       column_default, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position`, p.targetSchema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var table, colName, dataType, udtName, isNullable string
		var colDefault *string
		var position int
		if err := rows.Scan(&table, &colName, &dataType, &udtName, &isNullable, &colDefault, &position); err != nil {
			return err
		}
		t := out.Table(table)
		if t == nil {
			continue
		}

		lt := schema.ParseLogicalType(dataType)
		if lt.Kind == schema.LogicalUnknown {
			if _, ok := out.Enums[udtName]; ok {
				lt = schema.ParseEnumRef(udtName)
			}
		}

		col := &schema.Column{
			Name:         colName,
			DeclaredType: dataType,
			Type:         lt,
			Nullable:     isNullable == "YES",
			Default:      classifyDefault(colDefault),
		}
		t.Columns = append(t.Columns, col)
	}
	return rows.Err()
}

func classifyDefault(raw *string) schema.Default {
	if raw == nil {
		return schema.Default{Kind: schema.DefaultNone}
	}
	v := *raw
	switch {
	case strings.Contains(v, "nextval("):
		return schema.Default{Kind: schema.DefaultAutoIncrement, Raw: v}
	case strings.Contains(v, "("):
		fn := v[:strings.Index(v, "(")]
		return schema.Default{Kind: schema.DefaultFunctionCall, Raw: v, Func: fn}
	default:
		return schema.Default{Kind: schema.DefaultLiteral, Raw: v, Literal: v}
	}
}

func (p *Postgres) loadPrimaryKeys(ctx context.Context, out *schema.Schema) error {
	rows, err := p.pool.Query(ctx, `
		SELECT tc.table_name, kcu.column_name, kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1 AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY tc.table_name, kcu.ordinal_position`, p.targetSchema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var table, col string
		var pos int
		if err := rows.Scan(&table, &col, &pos); err != nil {
			return err
		}
		t := out.Table(table)
		if t == nil {
			continue
		}
		if t.PrimaryKey == nil {
			t.PrimaryKey = &schema.PrimaryKey{}
		}
		t.PrimaryKey.Columns = append(t.PrimaryKey.Columns, col)
	}
	return rows.Err()
}

func (p *Postgres) loadUniques(ctx context.Context, out *schema.Schema) error {
	rows, err := p.pool.Query(ctx, `
		SELECT tc.table_name, tc.constraint_name, kcu.column_name, kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1 AND tc.constraint_type = 'UNIQUE'
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`, p.targetSchema)
	if err != nil {
		return err
	}
	defer rows.Close()

	byConstraint := map[string]*schema.UniqueConstraint{}
	var order []string
	tableOf := map[string]string{}
	for rows.Next() {
		var table, name, col string
		var pos int
		if err := rows.Scan(&table, &name, &col, &pos); err != nil {
			return err
		}
		uc, ok := byConstraint[name]
		if !ok {
			uc = &schema.UniqueConstraint{Name: name}
			byConstraint[name] = uc
			order = append(order, name)
			tableOf[name] = table
		}
		uc.Columns = append(uc.Columns, col)
	}
	for _, name := range order {
		t := out.Table(tableOf[name])
		if t != nil {
			t.Uniques = append(t.Uniques, byConstraint[name])
		}
	}
	return rows.Err()
}

func (p *Postgres) loadChecks(ctx context.Context, out *schema.Schema) error {
	rows, err := p.pool.Query(ctx, `
		SELECT tc.table_name, cc.constraint_name, cc.check_clause
		FROM information_schema.check_constraints cc
		JOIN information_schema.table_constraints tc
		  ON cc.constraint_name = tc.constraint_name AND cc.constraint_schema = tc.table_schema
		WHERE tc.table_schema = $1`, p.targetSchema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var table, name, clause string
		if err := rows.Scan(&table, &name, &clause); err != nil {
			return err
		}
		t := out.Table(table)
		if t == nil {
			continue
		}
		t.Checks = append(t.Checks, &schema.CheckConstraint{
			Name:      name,
			Raw:       clause,
			Predicate: schema.ParseCheckPredicate(clause),
		})
	}
	return rows.Err()
}

func (p *Postgres) loadForeignKeys(ctx context.Context, out *schema.Schema) error {
	rows, err := p.pool.Query(ctx, `
		SELECT
		  tc.table_name, tc.constraint_name, kcu.column_name, kcu.ordinal_position,
		  ccu.table_name AS referenced_table, ccu.column_name AS referenced_column,
		  rc.delete_rule, tc.is_deferrable
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.referential_constraints rc
		  ON tc.constraint_name = rc.constraint_name AND tc.table_schema = rc.constraint_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON rc.unique_constraint_name = ccu.constraint_name
		WHERE tc.table_schema = $1 AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`, p.targetSchema)
	if err != nil {
		return err
	}
	defer rows.Close()

	byConstraint := map[string]*schema.ForeignKey{}
	var order []string
	tableOf := map[string]string{}
	for rows.Next() {
		var table, name, col, refTable, refCol, deleteRule, isDeferrable string
		var pos int
		if err := rows.Scan(&table, &name, &col, &pos, &refTable, &refCol, &deleteRule, &isDeferrable); err != nil {
			return err
		}
		fk, ok := byConstraint[name]
		if !ok {
			fk = &schema.ForeignKey{
				Name:            name,
				ReferencedTable: refTable,
				OnDelete:        normalizeDeleteRule(deleteRule),
				Deferrable:      isDeferrable == "YES",
			}
			byConstraint[name] = fk
			order = append(order, name)
			tableOf[name] = table
		}
		fk.Columns = append(fk.Columns, col)
		fk.ReferencedColumns = append(fk.ReferencedColumns, refCol)
	}
	for _, name := range order {
		t := out.Table(tableOf[name])
		if t != nil {
			t.ForeignKeys = append(t.ForeignKeys, byConstraint[name])
		}
	}
	return rows.Err()
}

func normalizeDeleteRule(rule string) schema.OnDeleteAction {
	switch strings.ToUpper(rule) {
	case "CASCADE":
		return schema.OnDeleteCascade
	case "SET NULL":
		return schema.OnDeleteSetNull
	case "SET DEFAULT":
		return schema.OnDeleteSetDefault
	case "RESTRICT":
		return schema.OnDeleteRestrict
	default:
		return schema.OnDeleteNoAction
	}
}
