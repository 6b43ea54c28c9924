package schema

import (
	"regexp"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ParseCheckPredicate attempts to parse a raw CHECK constraint expression
// into the bounded sublanguage from spec.md §3: `col OP literal`, `col
// BETWEEN a AND b`, `col IN (...)`, `col IS NOT NULL`, and
// conjunctions/disjunctions of such leaves.
//
// It parses raw with PostgreSQL's own grammar via
// github.com/pganalyze/pg_query_go -- the same parser the introspection
// side would use for DDL -- by wrapping it as a WHERE clause and walking
// the resulting expression AST, rather than pattern-matching the
// expression text. This handles the casts and extra parenthesization
// Postgres's own check_clause normalization adds (e.g. "(total >=
// (0)::numeric)") without special-casing every suffix. Falls back to a
// pattern-based parse for the rare case pg_query itself rejects the input
// (a syntax form outside what Parse accepts). Returns nil when the
// expression's shape falls outside the bounded sublanguage (a function
// call, a subquery, an OR of non-leaf shapes, ...); the generator does not
// evaluate a check whose predicate is nil.
func ParseCheckPredicate(raw string) *Predicate {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	p, parsed := parseWithPgQuery(trimmed)
	if parsed {
		return p
	}
	return parsePattern(trimmed)
}

// parseWithPgQuery parses expr as the WHERE clause of a throwaway SELECT
// and converts the resulting expression AST into a Predicate. parsed is
// false only when pg_query can't parse the wrapped statement; when it can
// but the AST uses a shape outside the bounded sublanguage, the Predicate
// is nil and parsed is true.
func parseWithPgQuery(expr string) (p *Predicate, parsed bool) {
	result, err := pg_query.Parse("SELECT 1 WHERE " + expr)
	if err != nil {
		return nil, false
	}
	if len(result.Stmts) != 1 || result.Stmts[0].Stmt == nil {
		return nil, true
	}
	sel, ok := result.Stmts[0].Stmt.Node.(*pg_query.Node_SelectStmt)
	if !ok || sel.SelectStmt.WhereClause == nil {
		return nil, true
	}
	return nodeToPredicate(sel.SelectStmt.WhereClause), true
}

func nodeToPredicate(node *pg_query.Node) *Predicate {
	if node == nil {
		return nil
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_BoolExpr:
		return boolExprToPredicate(n.BoolExpr)
	case *pg_query.Node_AExpr:
		return aExprToPredicate(n.AExpr)
	case *pg_query.Node_NullTest:
		return nullTestToPredicate(n.NullTest)
	default:
		return nil
	}
}

func boolExprToPredicate(b *pg_query.BoolExpr) *Predicate {
	var kind PredicateKind
	switch b.Boolop {
	case pg_query.BoolExprType_AND_EXPR:
		kind = PredicateAnd
	case pg_query.BoolExprType_OR_EXPR:
		kind = PredicateOr
	default:
		return nil // NOT isn't part of the bounded sublanguage
	}

	node := &Predicate{Kind: kind}
	for _, arg := range b.Args {
		child := nodeToPredicate(arg)
		if child == nil {
			return nil
		}
		node.Children = append(node.Children, child)
	}
	return node
}

func nullTestToPredicate(nt *pg_query.NullTest) *Predicate {
	if nt.Nulltesttype != pg_query.NullTestType_IS_NOT_NULL {
		return nil // bare IS NULL never narrows generation, so it's left opaque
	}
	col, ok := columnRefName(nt.Arg)
	if !ok {
		return nil
	}
	return &Predicate{Kind: PredicateLeaf, Column: col, Op: OpNotNull}
}

func aExprToPredicate(a *pg_query.A_Expr) *Predicate {
	col, ok := columnRefName(a.Lexpr)
	if !ok {
		return nil
	}

	switch a.Kind {
	case pg_query.A_Expr_Kind_AEXPR_BETWEEN, pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM:
		items, ok := listItems(a.Rexpr)
		if !ok || len(items) != 2 {
			return nil
		}
		low, okLow := constLiteral(items[0])
		high, okHigh := constLiteral(items[1])
		if !okLow || !okHigh {
			return nil
		}
		return &Predicate{Kind: PredicateLeaf, Column: col, Op: OpBetween, Low: low, High: high}

	case pg_query.A_Expr_Kind_AEXPR_IN:
		items, ok := listItems(a.Rexpr)
		if !ok {
			return nil
		}
		values := make([]string, 0, len(items))
		for _, item := range items {
			v, ok := constLiteral(item)
			if !ok {
				return nil
			}
			values = append(values, v)
		}
		return &Predicate{Kind: PredicateLeaf, Column: col, Op: OpIn, Values: values}

	case pg_query.A_Expr_Kind_AEXPR_OP:
		op, ok := opName(a.Name)
		if !ok {
			return nil
		}
		lit, ok := constLiteral(a.Rexpr)
		if !ok {
			return nil
		}
		return &Predicate{Kind: PredicateLeaf, Column: col, Op: op, Literal: lit}
	}
	return nil
}

func columnRefName(node *pg_query.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	ref, ok := node.Node.(*pg_query.Node_ColumnRef)
	if !ok || len(ref.ColumnRef.Fields) == 0 {
		return "", false
	}
	str := ref.ColumnRef.Fields[len(ref.ColumnRef.Fields)-1].GetString_()
	if str == nil {
		return "", false
	}
	return str.Sval, true
}

func listItems(node *pg_query.Node) ([]*pg_query.Node, bool) {
	if node == nil {
		return nil, false
	}
	list, ok := node.Node.(*pg_query.Node_List)
	if !ok {
		return nil, false
	}
	return list.List.Items, true
}

// constLiteral extracts a constant's string form, unwrapping the explicit
// type casts Postgres adds when it normalizes a CHECK expression's
// check_clause (e.g. "(0)::numeric").
func constLiteral(node *pg_query.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	if cast, ok := node.Node.(*pg_query.Node_TypeCast); ok {
		return constLiteral(cast.TypeCast.Arg)
	}
	c, ok := node.Node.(*pg_query.Node_AConst)
	if !ok || c.AConst.Isnull {
		return "", false
	}
	switch val := c.AConst.Val.(type) {
	case *pg_query.A_Const_Ival:
		return strconv.FormatInt(int64(val.Ival.Ival), 10), true
	case *pg_query.A_Const_Fval:
		return val.Fval.Fval, true
	case *pg_query.A_Const_Sval:
		return val.Sval.Sval, true
	case *pg_query.A_Const_Boolval:
		return strconv.FormatBool(val.Boolval.Boolval), true
	default:
		return "", false
	}
}

func opName(nameNodes []*pg_query.Node) (PredicateOp, bool) {
	if len(nameNodes) == 0 {
		return "", false
	}
	str := nameNodes[0].GetString_()
	if str == nil {
		return "", false
	}
	switch str.Sval {
	case "=":
		return OpEq, true
	case "<>", "!=":
		return OpNe, true
	case "<":
		return OpLt, true
	case "<=":
		return OpLe, true
	case ">":
		return OpGt, true
	case ">=":
		return OpGe, true
	}
	return "", false
}

// parsePattern is the pre-pg_query pattern-matching parser, kept as a
// fallback for the rare expression pg_query.Parse itself rejects. It
// recognizes exactly the same bounded sublanguage by splitting on AND/OR
// at paren-depth zero and matching each leaf against a fixed set of
// regexes.
func parsePattern(expr string) *Predicate {
	expr = trimOuterParens(expr)

	if p := splitOnConjunction(expr, " AND ", PredicateAnd); p != nil {
		return p
	}
	if p := splitOnConjunction(expr, " OR ", PredicateOr); p != nil {
		return p
	}
	return parseLeafPattern(expr)
}

// splitOnConjunction performs a case-insensitive, paren-depth-aware split
// on the given keyword and, if at least two well-formed leaves result,
// returns the combined node. Returns nil if the keyword doesn't appear at
// depth zero, or if any resulting piece fails to parse.
func splitOnConjunction(expr, keyword string, kind PredicateKind) *Predicate {
	parts := splitAtDepthZero(expr, keyword)
	if len(parts) < 2 {
		return nil
	}
	node := &Predicate{Kind: kind}
	for _, part := range parts {
		child := parsePattern(trimOuterParens(strings.TrimSpace(part)))
		if child == nil {
			return nil
		}
		node.Children = append(node.Children, child)
	}
	return node
}

func splitAtDepthZero(expr, keyword string) []string {
	upper := strings.ToUpper(expr)
	kwUpper := strings.ToUpper(keyword)
	depth := 0
	var parts []string
	last := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && i+len(kwUpper) <= len(upper) && upper[i:i+len(kwUpper)] == kwUpper {
			parts = append(parts, expr[last:i])
			last = i + len(kwUpper)
			i = last - 1
		}
	}
	parts = append(parts, expr[last:])
	return parts
}

func trimOuterParens(expr string) string {
	expr = strings.TrimSpace(expr)
	for len(expr) >= 2 && expr[0] == '(' && expr[len(expr)-1] == ')' {
		depth := 0
		closesAtEnd := true
		for i, r := range expr {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && i != len(expr)-1 {
					closesAtEnd = false
				}
			}
		}
		if !closesAtEnd {
			return expr
		}
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return expr
}

var (
	notNullRe = regexp.MustCompile(`(?i)^(\w+)\s+IS\s+NOT\s+NULL$`)
	betweenRe = regexp.MustCompile(`(?i)^(\w+)\s+BETWEEN\s+(.+?)\s+AND\s+(.+)$`)
	inRe      = regexp.MustCompile(`(?i)^(\w+)\s+IN\s*\((.+)\)$`)
	cmpRe     = regexp.MustCompile(`^(\w+)\s*(=|<>|!=|<=|>=|<|>)\s*(.+)$`)
)

func parseLeafPattern(expr string) *Predicate {
	if m := notNullRe.FindStringSubmatch(expr); m != nil {
		return &Predicate{Kind: PredicateLeaf, Column: m[1], Op: OpNotNull}
	}
	if m := betweenRe.FindStringSubmatch(expr); m != nil {
		return &Predicate{
			Kind: PredicateLeaf, Column: m[1], Op: OpBetween,
			Low: stripLiteral(m[2]), High: stripLiteral(m[3]),
		}
	}
	if m := inRe.FindStringSubmatch(expr); m != nil {
		var values []string
		for _, v := range strings.Split(m[2], ",") {
			values = append(values, stripLiteral(strings.TrimSpace(v)))
		}
		return &Predicate{Kind: PredicateLeaf, Column: m[1], Op: OpIn, Values: values}
	}
	if m := cmpRe.FindStringSubmatch(expr); m != nil {
		op := PredicateOp(m[2])
		if op == "!=" {
			op = OpNe
		}
		return &Predicate{Kind: PredicateLeaf, Column: m[1], Op: op, Literal: stripLiteral(m[3])}
	}
	return nil
}

func stripLiteral(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "::integer")
	s = strings.TrimSuffix(s, "::numeric")
	s = strings.TrimSuffix(s, "::text")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
