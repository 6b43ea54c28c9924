package graph

import (
	"sort"
	"strings"

	"github.com/seedkit/seedkit/schema"
	"github.com/seedkit/seedkit/seederr"
)

// StepKind distinguishes the two kinds of plan step (spec.md §3).
type StepKind string

const (
	StepEmit           StepKind = "emit"
	StepDeferredUpdate StepKind = "deferred_update"
)

// Step is one entry of an InsertionPlan.
type Step struct {
	Kind    StepKind
	Table   string
	Columns []string // populated for StepDeferredUpdate: the broken FK's local columns
	Parent  string   // populated for StepDeferredUpdate
	Nullable bool    // whether the deferred FK may receive NULL
}

// InsertionPlan is the ordered list of emit/deferred-update steps that
// drives generation (spec.md §3/§4.1).
type InsertionPlan struct {
	Steps []Step
}

// EmitOrder returns just the table names of the Emit steps, in plan order.
func (p *InsertionPlan) EmitOrder() []string {
	var out []string
	for _, s := range p.Steps {
		if s.Kind == StepEmit {
			out = append(out, s.Table)
		}
	}
	return out
}

// BreakCycleConfig supplies the explicit operator overrides from
// config.graph.break_cycle_at (spec.md §4.1 rule 1), keyed by
// "table.column".
type BreakCycleConfig struct {
	BreakCycleAt map[string]bool
}

// Plan builds the InsertionPlan for s: detect SCCs, select break edges per
// the priority rules in spec.md §4.1, then topologically sort the
// acyclified graph.
func Plan(s *schema.Schema, cfg BreakCycleConfig) (*InsertionPlan, error) {
	g := Build(s)
	broken := map[int]bool{} // edge id -> broken

	for _, comp := range g.SCCs() {
		if g.TrivialSCC(comp) {
			continue
		}
		if err := breakComponent(g, comp, cfg, broken); err != nil {
			return nil, err
		}
	}

	order, err := topoSort(g, broken)
	if err != nil {
		return nil, err
	}

	plan := &InsertionPlan{}
	for _, table := range order {
		plan.Steps = append(plan.Steps, Step{Kind: StepEmit, Table: table})
	}
	for _, e := range g.Edges {
		if broken[e.ID] {
			plan.Steps = append(plan.Steps, Step{
				Kind:     StepDeferredUpdate,
				Table:    e.Child,
				Columns:  e.FK.Columns,
				Parent:   e.Parent,
				Nullable: e.Nullable,
			})
		}
	}
	return plan, nil
}

// componentEdges returns every edge with both endpoints inside comp,
// sorted for deterministic tie-breaking.
func componentEdges(g *Graph, comp []string) []*Edge {
	in := map[string]bool{}
	for _, t := range comp {
		in[t] = true
	}
	var edges []*Edge
	for _, t := range comp {
		for _, e := range g.OutEdges(t) {
			if in[e.Parent] {
				edges = append(edges, e)
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Child != edges[j].Child {
			return edges[i].Child < edges[j].Child
		}
		return joinCols(edges[i].FK.Columns) < joinCols(edges[j].FK.Columns)
	})
	return edges
}

// breakComponent selects and marks the break edges for one non-trivial
// SCC, per the priority rules of spec.md §4.1. It keeps breaking edges
// (highest priority first) and re-checking acyclicity of the component
// until no cycle remains, so composite cycles with several independent
// loops all get resolved.
func breakComponent(g *Graph, comp []string, cfg BreakCycleConfig, broken map[int]bool) error {
	candidates := componentEdges(g, comp)

	for hasCycle(g, comp, broken) {
		next := pickBreakEdge(candidates, cfg, broken)
		if next == nil {
			return seederr.CycleUnbreakable(comp, "no nullable or explicitly-configured break edge available")
		}
		if !next.Nullable {
			return seederr.CycleUnbreakable(comp, describeEdge(next))
		}
		broken[next.ID] = true
	}
	return nil
}

// pickBreakEdge applies the spec.md §4.1 priority order over the
// remaining (not-yet-broken) candidate edges.
func pickBreakEdge(candidates []*Edge, cfg BreakCycleConfig, broken map[int]bool) *Edge {
	var remaining []*Edge
	for _, e := range candidates {
		if !broken[e.ID] {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	// Rule 1: explicit config.graph.break_cycle_at.
	for _, e := range remaining {
		for _, col := range e.FK.Columns {
			if cfg.BreakCycleAt[e.Child+"."+col] {
				return e
			}
		}
	}

	// Rule 2: nullable edges.
	for _, e := range remaining {
		if e.Nullable {
			return e
		}
	}

	// Rule 3: ON DELETE SET NULL.
	for _, e := range remaining {
		if e.FK.OnDelete == schema.OnDeleteSetNull {
			return e
		}
	}

	// Rule 4: lowest FK arity first (cheapest to defer).
	sort.SliceStable(remaining, func(i, j int) bool {
		return len(remaining[i].FK.Columns) < len(remaining[j].FK.Columns)
	})
	minArity := len(remaining[0].FK.Columns)
	var tied []*Edge
	for _, e := range remaining {
		if len(e.FK.Columns) == minArity {
			tied = append(tied, e)
		}
	}

	// Rule 5: lexicographic (child_table, local_columns) tiebreak.
	sort.Slice(tied, func(i, j int) bool {
		if tied[i].Child != tied[j].Child {
			return tied[i].Child < tied[j].Child
		}
		return joinCols(tied[i].FK.Columns) < joinCols(tied[j].FK.Columns)
	})
	return tied[0]
}

func describeEdge(e *Edge) string {
	return e.Child + "." + joinCols(e.FK.Columns) + " -> " + e.Parent
}

// hasCycle reports whether the subgraph induced by comp, with broken
// edges removed, still contains a cycle.
func hasCycle(g *Graph, comp []string, broken map[int]bool) bool {
	sub := &Graph{out: map[string][]int{}, in: map[string][]int{}}
	sub.Nodes = append([]string(nil), comp...)
	inComp := map[string]bool{}
	for _, t := range comp {
		inComp[t] = true
		sub.out[t] = nil
	}
	for _, e := range componentEdges(g, comp) {
		if broken[e.ID] {
			continue
		}
		sub.Edges = append(sub.Edges, e)
		sub.out[e.Child] = append(sub.out[e.Child], len(sub.Edges)-1)
	}
	for _, c := range sub.SCCs() {
		if !sub.TrivialSCC(c) {
			return true
		}
	}
	return false
}

// topoSort produces the topological order of the acyclified graph (broken
// edges excluded), with lexicographic tiebreaking for stability (spec.md
// §4.1).
func topoSort(g *Graph, broken map[int]bool) ([]string, error) {
	inDegree := map[string]int{}
	adj := map[string][]string{} // parent -> children waiting on it
	for _, n := range g.Nodes {
		inDegree[n] = 0
	}
	for _, e := range g.Edges {
		if broken[e.ID] {
			continue
		}
		if e.Child == e.Parent {
			continue // self-loop, already required to be broken if non-trivial
		}
		inDegree[e.Child]++
		adj[e.Parent] = append(adj[e.Parent], e.Child)
	}
	for p := range adj {
		sort.Strings(adj[p])
	}

	var queue []string
	for _, n := range g.Nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		sort.Strings(queue)
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, child := range adj[n] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		var stuck []string
		for _, n := range g.Nodes {
			if inDegree[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		return nil, seederr.CycleUnbreakable(stuck, strings.Join(stuck, ","))
	}
	return order, nil
}
