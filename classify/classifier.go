// Package classify assigns a SemanticKind to every column of a schema
// from a prioritized rule set, optionally augmented by an external oracle
// for columns the rules leave Unknown (spec.md §4.2).
package classify

import (
	"github.com/seedkit/seedkit/schema"
)

// Decision is one (table, column) -> SemanticKind assignment, the shape
// recorded in the lock file's classifier_decisions field.
type Decision struct {
	Table  string
	Column string
	Kind   schema.SemanticKind
}

// Classify assigns a SemanticKind to every column of s and returns the
// full decision map. It also mutates each schema.Column.Kind in place, so
// downstream packages (generate) can dispatch directly off the column
// without re-running classification. Pure over its inputs when oracle is
// nil or cached (spec.md §4.2, §9); idempotent: classifying an
// already-classified schema again yields the same decisions, since rule
// matching never consults Column.Kind.
func Classify(s *schema.Schema, oracle *Cache) map[string]Decision {
	decisions := map[string]Decision{}

	for _, tableName := range s.TableNames() {
		t := s.Tables[tableName]
		pkCols := map[string]bool{}
		if t.PrimaryKey != nil {
			for _, c := range t.PrimaryKey.Columns {
				pkCols[c] = true
			}
		}
		fkCols := map[string]bool{}
		for _, fk := range t.ForeignKeys {
			for _, c := range fk.Columns {
				fkCols[c] = true
			}
		}

		var siblings []string
		for _, c := range t.Columns {
			siblings = append(siblings, c.Name)
		}

		for _, col := range t.Columns {
			kind := classifyColumn(t, col, pkCols, fkCols, oracle, siblings)
			col.Kind = kind
			key := tableName + "." + col.Name
			decisions[key] = Decision{Table: tableName, Column: col.Name, Kind: kind}
		}
	}
	return decisions
}

// classifyColumn applies the priority order from spec.md §4.2: structural
// kinds first (override any name-based rule), then EnumRef, then the rule
// table, then the oracle as a last resort for Unknown columns.
func classifyColumn(t *schema.Table, col *schema.Column, pkCols, fkCols map[string]bool, oracle *Cache, siblings []string) schema.SemanticKind {
	if pkCols[col.Name] {
		return schema.KindPK
	}
	if fkCols[col.Name] {
		return schema.KindFK
	}
	if col.Type.Kind == schema.LogicalEnumRef {
		return schema.EnumOf(col.Type.EnumName)
	}

	kind := matchRules(t.Name, col.Name, col.Type)
	if kind != schema.KindUnknown {
		return kind
	}

	if oracle != nil {
		view := ColumnView{Table: t.Name, Column: col.Name, DeclaredType: col.DeclaredType, Siblings: siblings}
		if suggested, ok := oracle.Suggest(view); ok {
			return suggested
		}
	}
	return schema.KindUnknown
}
