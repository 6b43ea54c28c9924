package schema

// OnDeleteAction mirrors the SQL ON DELETE clause of a foreign key.
type OnDeleteAction string

const (
	OnDeleteNoAction   OnDeleteAction = "NO_ACTION"
	OnDeleteCascade    OnDeleteAction = "CASCADE"
	OnDeleteSetNull    OnDeleteAction = "SET_NULL"
	OnDeleteSetDefault OnDeleteAction = "SET_DEFAULT"
	OnDeleteRestrict   OnDeleteAction = "RESTRICT"
)

// ForeignKey is a (possibly composite) reference from this table's local
// columns to a unique or primary key of a parent table.
type ForeignKey struct {
	Name              string         `json:"name"`
	Columns           []string       `json:"columns"`
	ReferencedTable   string         `json:"referenced_table"`
	ReferencedColumns []string       `json:"referenced_columns"`
	OnDelete          OnDeleteAction `json:"on_delete"`
	Deferrable        bool           `json:"deferrable"`
}

// Nullable reports whether every local column of the FK is nullable in the
// owning table -- such an FK is eligible to be broken and deferred when it
// participates in a dependency cycle (spec.md §4.1).
func (fk *ForeignKey) Nullable(owner *Table) bool {
	for _, colName := range fk.Columns {
		col := owner.Column(colName)
		if col == nil || !col.Nullable {
			return false
		}
	}
	return true
}

// CheckConstraint carries the raw expression text plus, when it falls
// within the bounded sublanguage of spec.md §3, a parsed predicate. When
// parsing fails, Predicate is nil; the generator's range narrowing and
// rejection sampling only consult parsed predicates, so such a constraint
// is not checked during generation.
type CheckConstraint struct {
	Name      string     `json:"name"`
	Raw       string     `json:"raw"`
	Predicate *Predicate `json:"predicate,omitempty"`
}

// PredicateOp is the set of comparison/membership operators the bounded
// check-constraint sublanguage recognizes.
type PredicateOp string

const (
	OpEq      PredicateOp = "="
	OpNe      PredicateOp = "<>"
	OpLt      PredicateOp = "<"
	OpLe      PredicateOp = "<="
	OpGt      PredicateOp = ">"
	OpGe      PredicateOp = ">="
	OpBetween PredicateOp = "BETWEEN"
	OpIn      PredicateOp = "IN"
	OpNotNull PredicateOp = "IS NOT NULL"
)

// PredicateKind distinguishes a single comparison from a conjunction or
// disjunction of sub-predicates.
type PredicateKind string

const (
	PredicateLeaf PredicateKind = "leaf"
	PredicateAnd  PredicateKind = "and"
	PredicateOr   PredicateKind = "or"
)

// Predicate is a node in the bounded check-constraint predicate tree:
// `col OP literal`, `col BETWEEN a AND b`, `col IN (...)`, `col IS NOT
// NULL`, or a conjunction/disjunction of such leaves.
type Predicate struct {
	Kind PredicateKind `json:"kind"`

	// Leaf fields.
	Column  string      `json:"column,omitempty"`
	Op      PredicateOp `json:"op,omitempty"`
	Literal string      `json:"literal,omitempty"`
	Low     string      `json:"low,omitempty"`  // BETWEEN lower bound
	High    string      `json:"high,omitempty"` // BETWEEN upper bound
	Values  []string    `json:"values,omitempty"` // IN set

	// Conjunction/disjunction fields.
	Children []*Predicate `json:"children,omitempty"`
}
