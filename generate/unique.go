package generate

import (
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/seedkit/seedkit/schema"
	"github.com/seedkit/seedkit/seederr"
)

// uniqueTracker enforces one UniqueConstraint (or the primary key, treated
// identically) across all rows generated for a table. Resolution follows
// spec.md §4.3 step 4: resample up to K times, then mutate the colliding
// value up to M-K times, then fail with UniqueExhausted.
type uniqueTracker struct {
	table       string
	constraint  string
	columns     []string
	seen        map[string]bool
	resampleMax int
	totalMax    int
}

func newUniqueTracker(table, constraint string, columns []string, resampleMax, totalMax int) *uniqueTracker {
	return &uniqueTracker{
		table:       table,
		constraint:  constraint,
		columns:     columns,
		seen:        map[string]bool{},
		resampleMax: resampleMax,
		totalMax:    totalMax,
	}
}

func tupleKey(values []interface{}) string {
	key := ""
	for i, v := range values {
		if i > 0 {
			key += "\x1f"
		}
		key += fmt.Sprintf("%v", v)
	}
	return key
}

// resolve ensures the tuple produced by gen is distinct from every prior
// tuple accepted for this constraint, resampling then mutating within
// budget before giving up.
func (u *uniqueTracker) resolve(rowIndex int, gen func() []interface{}, mutate func([]interface{}) []interface{}) ([]interface{}, error) {
	attempts := 0
	var values []interface{}
	for attempts < u.resampleMax {
		values = gen()
		if !u.seen[tupleKey(values)] {
			u.accept(values)
			return values, nil
		}
		attempts++
	}

	for attempts < u.totalMax {
		values = mutate(values)
		if !u.seen[tupleKey(values)] {
			u.accept(values)
			return values, nil
		}
		attempts++
	}

	return nil, seederr.UniqueExhausted(u.table, u.constraint, rowIndex)
}

func (u *uniqueTracker) accept(values []interface{}) {
	u.seen[tupleKey(values)] = true
}

// mutateSuffix appends a short random suffix to a string-valued column,
// the cheapest collision-breaking mutation for text-shaped unique columns
// (emails, usernames, slugs).
func mutateSuffix(f *gofakeit.Faker, v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return s + "-" + f.LetterN(4)
}

// mutateIncrement nudges a numeric-valued column by a small random delta,
// the cheapest collision-breaking mutation for integer unique columns.
func mutateIncrement(r *rand.Rand, v interface{}) interface{} {
	switch n := v.(type) {
	case int64:
		return n + int64(r.Intn(97)+1)
	case int:
		return n + r.Intn(97) + 1
	default:
		return v
	}
}

// shouldMutateNumerically reports whether col's LogicalKind calls for
// mutateIncrement rather than mutateSuffix when resampling is exhausted.
func shouldMutateNumerically(col *schema.Column) bool {
	return col.Type.Kind == schema.LogicalInteger
}
