package generate

import (
	"math"
	"strconv"

	"github.com/seedkit/seedkit/schema"
	"github.com/seedkit/seedkit/seederr"
)

// evalPredicate evaluates a parsed check-constraint predicate against a
// single already-generated row (spec.md §3 "bounded predicate sublanguage").
// row is keyed by column name; columns the predicate does not mention are
// never consulted.
func evalPredicate(p *schema.Predicate, row map[string]interface{}) bool {
	if p == nil {
		return true
	}
	switch p.Kind {
	case schema.PredicateAnd:
		for _, c := range p.Children {
			if !evalPredicate(c, row) {
				return false
			}
		}
		return true
	case schema.PredicateOr:
		for _, c := range p.Children {
			if evalPredicate(c, row) {
				return true
			}
		}
		return false
	default:
		return evalLeaf(p, row)
	}
}

func evalLeaf(p *schema.Predicate, row map[string]interface{}) bool {
	v, ok := row[p.Column]
	if !ok {
		return true // column not yet generated (joint group ordering); don't reject
	}

	if p.Op == schema.OpNotNull {
		return v != nil
	}
	if v == nil {
		return false
	}

	f, isNum := asFloat(v)

	switch p.Op {
	case schema.OpEq:
		if isNum {
			lit, ok := asFloatLit(p.Literal)
			return ok && f == lit
		}
		return toString(v) == p.Literal
	case schema.OpNe:
		if isNum {
			lit, ok := asFloatLit(p.Literal)
			return ok && f != lit
		}
		return toString(v) != p.Literal
	case schema.OpLt:
		lit, ok := asFloatLit(p.Literal)
		return isNum && ok && f < lit
	case schema.OpLe:
		lit, ok := asFloatLit(p.Literal)
		return isNum && ok && f <= lit
	case schema.OpGt:
		lit, ok := asFloatLit(p.Literal)
		return isNum && ok && f > lit
	case schema.OpGe:
		lit, ok := asFloatLit(p.Literal)
		return isNum && ok && f >= lit
	case schema.OpBetween:
		low, okLow := asFloatLit(p.Low)
		high, okHigh := asFloatLit(p.High)
		return isNum && okLow && okHigh && f >= low && f <= high
	case schema.OpIn:
		s := toString(v)
		for _, want := range p.Values {
			if s == want {
				return true
			}
		}
		return false
	}
	return true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asFloatLit(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// numericBound is the tightest numeric window narrowRange could derive for
// one column: an optional lower and/or upper literal, each either inclusive
// or exclusive.
type numericBound struct {
	hasLow, hasHigh             bool
	low, high                   float64
	lowExclusive, highExclusive bool
}

func (b *numericBound) intersect(o numericBound) {
	if o.hasLow && (!b.hasLow || o.low > b.low) {
		b.hasLow, b.low, b.lowExclusive = true, o.low, o.lowExclusive
	}
	if o.hasHigh && (!b.hasHigh || o.high < b.high) {
		b.hasHigh, b.high, b.highExclusive = true, o.high, o.highExclusive
	}
}

// integerRange resolves b to an inclusive [low, high] int64 window,
// rounding exclusive fractional bounds inward and stepping exclusive
// integer bounds by one (so "< 1000" yields a high of 999, not 1000).
// ok is false once the window is empty.
func (b numericBound) integerRange() (low, high int64, ok bool) {
	low, high = math.MinInt32, math.MaxInt32
	if b.hasLow {
		low = int64(math.Ceil(b.low))
		if b.lowExclusive && float64(low) == b.low {
			low++
		}
	}
	if b.hasHigh {
		high = int64(math.Floor(b.high))
		if b.highExclusive && float64(high) == b.high {
			high--
		}
	}
	return low, high, low <= high
}

// floatRange resolves b to a [low, high] float64 window for decimal/float
// columns, nudging exclusive bounds by a negligible epsilon.
func (b numericBound) floatRange() (low, high float64, ok bool) {
	low, high = -1e6, 1e6
	if b.hasLow {
		low = b.low
		if b.lowExclusive {
			low += 1e-9
		}
	}
	if b.hasHigh {
		high = b.high
		if b.highExclusive {
			high -= 1e-9
		}
	}
	return low, high, low <= high
}

// narrowRange inspects t's check constraints for col and, when every
// relevant leaf is a numeric bound seedkit can translate into generation
// limits (comparisons and BETWEEN, ANDed together), returns the tightest
// window it can derive (spec.md §4.3 step 5 "narrow first"). ok is false
// when no check constrains col numerically; compound ORs and non-numeric
// leaves (IN, NOT NULL, string equality, ...) are left for satisfyChecks'
// rejection sampling, since satisfying just one OR branch can leave col
// unconstrained.
func narrowRange(t *schema.Table, col string) (numericBound, bool) {
	var bound numericBound
	found := false
	for _, c := range t.Checks {
		if c.Predicate == nil {
			continue
		}
		b, ok := predicateBound(c.Predicate, col)
		if !ok {
			continue
		}
		bound.intersect(b)
		found = true
	}
	return bound, found
}

// predicateBound recurses into AND conjunctions collecting every leaf that
// directly bounds col; any other predicate kind (OR, a leaf on a different
// column) is reported as unbounded.
func predicateBound(p *schema.Predicate, col string) (numericBound, bool) {
	switch p.Kind {
	case schema.PredicateAnd:
		var out numericBound
		found := false
		for _, c := range p.Children {
			b, ok := predicateBound(c, col)
			if !ok {
				continue
			}
			out.intersect(b)
			found = true
		}
		return out, found
	case schema.PredicateLeaf:
		if p.Column != col {
			return numericBound{}, false
		}
		return leafBound(p)
	default:
		return numericBound{}, false
	}
}

func leafBound(p *schema.Predicate) (numericBound, bool) {
	switch p.Op {
	case schema.OpBetween:
		low, okLow := asFloatLit(p.Low)
		high, okHigh := asFloatLit(p.High)
		if !okLow || !okHigh {
			return numericBound{}, false
		}
		return numericBound{hasLow: true, low: low, hasHigh: true, high: high}, true
	case schema.OpGe:
		v, ok := asFloatLit(p.Literal)
		if !ok {
			return numericBound{}, false
		}
		return numericBound{hasLow: true, low: v}, true
	case schema.OpGt:
		v, ok := asFloatLit(p.Literal)
		if !ok {
			return numericBound{}, false
		}
		return numericBound{hasLow: true, low: v, lowExclusive: true}, true
	case schema.OpLe:
		v, ok := asFloatLit(p.Literal)
		if !ok {
			return numericBound{}, false
		}
		return numericBound{hasHigh: true, high: v}, true
	case schema.OpLt:
		v, ok := asFloatLit(p.Literal)
		if !ok {
			return numericBound{}, false
		}
		return numericBound{hasHigh: true, high: v, highExclusive: true}, true
	case schema.OpEq:
		v, ok := asFloatLit(p.Literal)
		if !ok {
			return numericBound{}, false
		}
		return numericBound{hasLow: true, low: v, hasHigh: true, high: v}, true
	}
	return numericBound{}, false
}

// satisfyChecks retries genValue (which must re-roll col's value into row)
// up to budget times until every check constraint on t that mentions col is
// satisfied, given the rest of row already populated. Returns
// CheckUnsatisfiable once the budget is exhausted (spec.md §4.3 step 5).
func satisfyChecks(t *schema.Table, col string, row map[string]interface{}, rowIndex, budget int, genValue func() interface{}) error {
	relevant := checksForColumn(t, col)
	if len(relevant) == 0 {
		return nil
	}

	for attempt := 0; attempt < budget; attempt++ {
		row[col] = genValue()
		allOK := true
		for _, c := range relevant {
			if !evalPredicate(c.Predicate, row) {
				allOK = false
				break
			}
		}
		if allOK {
			return nil
		}
	}
	return seederr.CheckUnsatisfiable(t.Name, col, rowIndex)
}

// checksForColumn returns the table's checks that have a parsed predicate
// mentioning col, directly or within a conjunction/disjunction.
func checksForColumn(t *schema.Table, col string) []*schema.CheckConstraint {
	var out []*schema.CheckConstraint
	for _, c := range t.Checks {
		if c.Predicate != nil && predicateMentions(c.Predicate, col) {
			out = append(out, c)
		}
	}
	return out
}

func predicateMentions(p *schema.Predicate, col string) bool {
	if p == nil {
		return false
	}
	if p.Kind == schema.PredicateLeaf {
		return p.Column == col
	}
	for _, c := range p.Children {
		if predicateMentions(c, col) {
			return true
		}
	}
	return false
}
