package generate

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/seedkit/seedkit/config"
	"github.com/seedkit/seedkit/schema"
	"github.com/seedkit/seedkit/seederr"
)

// GeneratedKeyTable is the pool of primary key tuples already emitted for
// one table, used to resolve a child row's foreign keys (spec.md §4.3 step
// 3 "FK resolution"). Populated incrementally as generator.go emits rows in
// plan order, so a parent table's pool is always complete before any child
// consults it.
type GeneratedKeyTable struct {
	Columns []string
	Keys    [][]interface{}
}

func (k *GeneratedKeyTable) pick(r *rand.Rand) []interface{} {
	if len(k.Keys) == 0 {
		return nil
	}
	return k.Keys[r.Intn(len(k.Keys))]
}

// rowContext carries everything generateRow needs that is shared across a
// whole table's generation, so the per-row function stays a plain
// transform over its own row index.
type rowContext struct {
	schema      *schema.Schema
	table       *schema.Table
	cfg         *config.Config
	seed        int64
	parentKeys  map[string]*GeneratedKeyTable // table name -> its key pool
	uniques     map[string]*uniqueTracker     // "table.constraint" -> tracker
	deferredFKs map[string]bool               // "table.column" -> broken, emit NULL here
}

// generateRow synthesizes one row of ctx.table at rowIndex: foreign keys
// first (skipping any broken/deferred ones), then the primary key when it
// is not already implied by the FKs, then every remaining column --
// jointly within a correlated group when one applies -- then uniqueness
// enforcement over the finished tuple (spec.md §4.3 steps 1-4).
func generateRow(ctx *rowContext, rowIndex int) (map[string]interface{}, error) {
	row := map[string]interface{}{}
	rowRand := RowRand(ctx.seed, ctx.table.Name, rowIndex)
	rowFaker := RowFaker(ctx.seed, ctx.table.Name, rowIndex)

	pkCols := map[string]bool{}
	if ctx.table.PrimaryKey != nil {
		for _, c := range ctx.table.PrimaryKey.Columns {
			pkCols[c] = true
		}
	}
	fkCols := map[string]bool{}
	for _, fk := range ctx.table.ForeignKeys {
		for _, c := range fk.Columns {
			fkCols[c] = true
		}
	}

	for _, fk := range ctx.table.ForeignKeys {
		if ctx.deferredFKs[ctx.table.Name+"."+fk.Columns[0]] {
			for _, c := range fk.Columns {
				row[c] = nil
			}
			continue
		}
		if err := resolveFK(ctx, fk, row, rowRand, rowIndex); err != nil {
			return nil, err
		}
	}

	if ctx.table.PrimaryKey != nil {
		for _, c := range ctx.table.PrimaryKey.Columns {
			if _, ok := row[c]; ok {
				continue
			}
			col := ctx.table.Column(c)
			colFaker := RowColumnFaker(ctx.seed, ctx.table.Name, c, rowIndex)
			v, err := genColumn(colFaker, ctx.table, col)
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
	}

	_, hasLocation := activeGroup(ctx.table, pkCols, fkCols, groupLocation)
	_, hasPerson := activeGroup(ctx.table, pkCols, fkCols, groupPerson)
	_, hasTemporal := activeGroup(ctx.table, pkCols, fkCols, groupTemporal)

	var loc locationValues
	var per personValues
	var tmp temporalValues
	if hasLocation {
		loc = genLocation(rowFaker)
	}
	if hasPerson {
		per = genPerson(rowFaker)
	}
	if hasTemporal {
		tmp = genTemporal(rowRand, time.Now().AddDate(-3, 0, 0))
	}

	for _, col := range ctx.table.Columns {
		if pkCols[col.Name] || fkCols[col.Name] {
			continue
		}

		if col.Nullable && rowRand.Float64() < ctx.cfg.NullProbability {
			row[col.Name] = nil
			continue
		}

		if explicit, ok := explicitValue(ctx, col, rowIndex); ok {
			row[col.Name] = explicit
			continue
		}

		switch groupKinds[col.Kind] {
		case groupLocation:
			if hasLocation {
				row[col.Name] = loc.forKind(col.Kind)
				continue
			}
		case groupPerson:
			if hasPerson {
				row[col.Name] = per.forKind(col.Kind)
				continue
			}
		case groupTemporal:
			if hasTemporal {
				row[col.Name] = tmp.forKind(col.Kind)
				continue
			}
		}

		colFaker := RowColumnFaker(ctx.seed, ctx.table.Name, col.Name, rowIndex)
		if col.Type.Kind == schema.LogicalEnumRef {
			if enumVal, ok := pickEnumValue(ctx.schema, col, colFaker); ok {
				row[col.Name] = enumVal
			}
			continue
		}

		v, err := genColumn(colFaker, ctx.table, col)
		if err != nil {
			return nil, err
		}
		row[col.Name] = v

		if err := satisfyChecks(ctx.table, col.Name, row, rowIndex, ctx.cfg.CheckRejectionBudget, func() interface{} {
			val, _ := genColumn(colFaker, ctx.table, col)
			return val
		}); err != nil {
			return nil, err
		}
	}

	for _, uc := range ctx.table.Uniques {
		if err := enforceUnique(ctx, uc.Name, uc.Columns, row, rowIndex); err != nil {
			return nil, err
		}
	}
	if ctx.table.PrimaryKey != nil {
		if err := enforceUnique(ctx, "__pk__", ctx.table.PrimaryKey.Columns, row, rowIndex); err != nil {
			return nil, err
		}
	}

	return row, nil
}

// activeGroup reports whether any non-structural column of t belongs to g,
// so generateRow only pays for a joint draw (address, name pair, temporal
// pair) when the table actually has matching columns.
func activeGroup(t *schema.Table, pkCols, fkCols map[string]bool, g group) (group, bool) {
	for _, col := range t.Columns {
		if pkCols[col.Name] || fkCols[col.Name] {
			continue
		}
		if groupKinds[col.Kind] == g {
			return g, true
		}
	}
	return g, false
}

func resolveFK(ctx *rowContext, fk *schema.ForeignKey, row map[string]interface{}, r *rand.Rand, rowIndex int) error {
	parent := ctx.parentKeys[fk.ReferencedTable]
	if parent == nil || len(parent.Keys) == 0 {
		if fk.Nullable(ctx.table) {
			for _, c := range fk.Columns {
				row[c] = nil
			}
			return nil
		}
		return seederr.FkOrphan(ctx.table.Name, fk.Columns[0], rowIndex)
	}
	tuple := parent.pick(r)
	for i, c := range fk.Columns {
		row[c] = tuple[i]
	}
	return nil
}

// explicitValue honors an operator-supplied config.columns.<table>.<column>.values
// override, which wins over any --subset distribution weight (spec.md §6,
// §9).
func explicitValue(ctx *rowContext, col *schema.Column, rowIndex int) (interface{}, bool) {
	key := ctx.table.Name + "." + col.Name
	values := ctx.cfg.ColumnValues[key]
	if len(values) == 0 {
		return nil, false
	}
	r := RowColumnRand(ctx.seed, ctx.table.Name, col.Name+"#explicit", rowIndex)
	weights := ctx.cfg.ColumnWeights[key]
	if len(weights) == len(values) {
		return weightedPick(values, weights, r), true
	}
	return values[r.Intn(len(values))], true
}

func weightedPick(values []string, weights []float64, r *rand.Rand) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return values[r.Intn(len(values))]
	}
	roll := r.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if roll <= acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func pickEnumValue(s *schema.Schema, col *schema.Column, f *gofakeit.Faker) (string, bool) {
	enum := s.Enums[col.Type.EnumName]
	if enum == nil || len(enum.Labels) == 0 {
		return "", false
	}
	return enum.Labels[f.Number(0, len(enum.Labels)-1)], true
}

func enforceUnique(ctx *rowContext, constraint string, columns []string, row map[string]interface{}, rowIndex int) error {
	tracker := ctx.uniques[ctx.table.Name+"."+constraint]
	if tracker == nil {
		return nil
	}

	attempt := 0
	gen := func() []interface{} {
		values := make([]interface{}, len(columns))
		if attempt == 0 {
			for i, c := range columns {
				values[i] = row[c]
			}
		} else {
			for i, c := range columns {
				col := ctx.table.Column(c)
				f := ColumnFaker(ctx.seed, ctx.table.Name, fmt.Sprintf("%s#%d#resample%d", c, rowIndex, attempt))
				v, _ := genColumn(f, ctx.table, col)
				values[i] = v
			}
		}
		attempt++
		return values
	}

	resolved, err := tracker.resolve(rowIndex, gen, func(prev []interface{}) []interface{} {
		next := make([]interface{}, len(prev))
		copy(next, prev)
		for i, c := range columns {
			col := ctx.table.Column(c)
			if shouldMutateNumerically(col) {
				next[i] = mutateIncrement(ColumnRand(ctx.seed, ctx.table.Name, fmt.Sprintf("%s#%d#mutate", c, rowIndex)), next[i])
			} else {
				next[i] = mutateSuffix(ColumnFaker(ctx.seed, ctx.table.Name, fmt.Sprintf("%s#%d#mutate", c, rowIndex)), next[i])
			}
		}
		return next
	})
	if err != nil {
		return err
	}
	for i, c := range columns {
		row[c] = resolved[i]
	}
	return nil
}
