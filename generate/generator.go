package generate

import (
	"github.com/seedkit/seedkit/config"
	"github.com/seedkit/seedkit/graph"
	"github.com/seedkit/seedkit/schema"
	"github.com/seedkit/seedkit/sink"
)

// Generate runs the full synthesis pipeline over s, following plan's Emit
// and deferred-update steps in order, and returns one TableBatch per Emit
// step plus one UpdateBatch per deferred-update step (spec.md §4.3). Column
// classification must already have been applied to s (schema.Column.Kind
// populated) before calling Generate.
func Generate(s *schema.Schema, plan *graph.InsertionPlan, cfg *config.Config, seed int64) ([]sink.TableBatch, []sink.UpdateBatch, error) {
	keyPools := map[string]*GeneratedKeyTable{}
	uniques := map[string]*uniqueTracker{}
	deferredFKs := map[string]bool{}

	for _, step := range plan.Steps {
		if step.Kind != graph.StepDeferredUpdate {
			continue
		}
		deferredFKs[step.Table+"."+step.Columns[0]] = true
	}

	for _, tableName := range s.TableNames() {
		t := s.Tables[tableName]
		for _, uc := range t.Uniques {
			uniques[tableName+"."+uc.Name] = newUniqueTracker(tableName, uc.Name, uc.Columns, cfg.UniqueResampleBudget, cfg.UniqueTotalBudget)
		}
		if t.PrimaryKey != nil {
			uniques[tableName+".__pk__"] = newUniqueTracker(tableName, "primary key", t.PrimaryKey.Columns, cfg.UniqueResampleBudget, cfg.UniqueTotalBudget)
		}
	}

	var batches []sink.TableBatch
	var updates []sink.UpdateBatch

	for _, step := range plan.Steps {
		if step.Kind != graph.StepEmit {
			continue
		}
		t := s.Tables[step.Table]
		batch, keys, err := generateTable(s, t, cfg, seed, keyPools, uniques, deferredFKs)
		if err != nil {
			return nil, nil, err
		}
		batches = append(batches, batch)
		keyPools[step.Table] = keys
	}

	for _, step := range plan.Steps {
		if step.Kind != graph.StepDeferredUpdate {
			continue
		}
		upd, err := resolveDeferredUpdate(step, keyPools, seed)
		if err != nil {
			return nil, nil, err
		}
		updates = append(updates, upd)
	}

	return batches, updates, nil
}

// generateTable produces every row of t and the GeneratedKeyTable other
// tables' foreign keys will resolve against.
func generateTable(s *schema.Schema, t *schema.Table, cfg *config.Config, seed int64, keyPools map[string]*GeneratedKeyTable, uniques map[string]*uniqueTracker, deferredFKs map[string]bool) (sink.TableBatch, *GeneratedKeyTable, error) {
	ctx := &rowContext{
		schema:      s,
		table:       t,
		cfg:         cfg,
		seed:        seed,
		parentKeys:  keyPools,
		uniques:     uniques,
		deferredFKs: deferredFKs,
	}

	n := cfg.RowsFor(t.Name)
	rows := make([]map[string]interface{}, 0, n)
	var pkColumns []string
	if t.PrimaryKey != nil {
		pkColumns = t.PrimaryKey.Columns
	}
	keys := &GeneratedKeyTable{Columns: pkColumns}

	for i := 0; i < n; i++ {
		row, err := generateRow(ctx, i)
		if err != nil {
			return sink.TableBatch{}, nil, err
		}
		rows = append(rows, row)
		if t.PrimaryKey != nil {
			tuple := make([]interface{}, len(pkColumns))
			for j, c := range pkColumns {
				tuple[j] = row[c]
			}
			keys.Keys = append(keys.Keys, tuple)
		}
	}

	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c.Name
	}

	return sink.TableBatch{Table: t.Name, Columns: columns, Rows: rows}, keys, nil
}

// resolveDeferredUpdate picks, for every row of step.Table, a parent key
// tuple from the now-complete parent pool (spec.md §4.1 "deferred update is
// applied once the cycle's other side exists"). When the deferred FK is
// self-referential (step.Table == step.Parent), the parent is restricted to
// rows generated strictly before the child -- row 0 has none and keeps its
// NULL, every later row gets a parent from an earlier generation index --
// so the column forms a forest over generation order instead of pointing
// forward or at itself (spec.md §8 scenario 3).
func resolveDeferredUpdate(step graph.Step, keyPools map[string]*GeneratedKeyTable, seed int64) (sink.UpdateBatch, error) {
	parentKeys := keyPools[step.Parent]

	batch := sink.UpdateBatch{Table: step.Table, Columns: step.Columns, Parent: step.Parent}
	if parentKeys == nil || len(parentKeys.Keys) == 0 {
		return batch, nil
	}

	childKeys := keyPools[step.Table]
	selfRef := step.Table == step.Parent
	r := TableRand(seed, step.Table+"#deferred")
	for i, childKey := range childKeys.Keys {
		var tuple []interface{}
		if selfRef {
			if i == 0 {
				continue
			}
			tuple = parentKeys.Keys[r.Intn(i)]
		} else {
			tuple = parentKeys.Keys[(i+r.Intn(len(parentKeys.Keys)))%len(parentKeys.Keys)]
		}

		keyMap := map[string]interface{}{}
		for j, c := range childKeys.Columns {
			keyMap[c] = childKey[j]
		}
		values := map[string]interface{}{}
		for j, c := range step.Columns {
			values[c] = tuple[j]
		}

		batch.Updates = append(batch.Updates, sink.RowUpdate{Key: keyMap, Values: values})
	}
	return batch, nil
}
