// Package graph builds the table dependency digraph from foreign keys,
// detects cycles, selects cycle-breaking edges, and emits a topological
// InsertionPlan (spec.md §3/§4.1).
package graph

import (
	"sort"

	"github.com/seedkit/seedkit/schema"
)

// Edge is a single child->parent foreign-key edge, labeled with the
// properties cycle-breaking selection needs (spec.md §4.1).
type Edge struct {
	ID       int
	Child    string
	Parent   string
	FK       *schema.ForeignKey
	Nullable bool
}

// Graph is an adjacency-list digraph over table names, one node per table
// and one edge per foreign key (self-loops allowed). Edges are stored by
// stable integer id in an arena, per spec.md §9's "avoid pointer cycles"
// design note.
type Graph struct {
	Nodes []string          // all table names, sorted
	Edges []*Edge           // arena, indexed by Edge.ID
	out   map[string][]int  // table -> outgoing edge ids (child -> parent)
	in    map[string][]int  // table -> incoming edge ids
}

// Build constructs the dependency graph for s: one node per table, one
// edge per foreign key.
func Build(s *schema.Schema) *Graph {
	g := &Graph{
		out: make(map[string][]int),
		in:  make(map[string][]int),
	}
	g.Nodes = s.TableNames()
	for _, name := range g.Nodes {
		g.out[name] = nil
		g.in[name] = nil
	}

	for _, tableName := range g.Nodes {
		t := s.Tables[tableName]
		for _, fk := range t.ForeignKeys {
			e := &Edge{
				ID:       len(g.Edges),
				Child:    tableName,
				Parent:   fk.ReferencedTable,
				FK:       fk,
				Nullable: fk.Nullable(t),
			}
			g.Edges = append(g.Edges, e)
			g.out[tableName] = append(g.out[tableName], e.ID)
			g.in[fk.ReferencedTable] = append(g.in[fk.ReferencedTable], e.ID)
		}
	}
	return g
}

// OutEdges returns the outgoing (child->parent) edges of table, sorted by
// parent table name then local column list for stable iteration.
func (g *Graph) OutEdges(table string) []*Edge {
	ids := append([]int(nil), g.out[table]...)
	sort.Slice(ids, func(i, j int) bool {
		a, b := g.Edges[ids[i]], g.Edges[ids[j]]
		if a.Parent != b.Parent {
			return a.Parent < b.Parent
		}
		return joinCols(a.FK.Columns) < joinCols(b.FK.Columns)
	})
	edges := make([]*Edge, len(ids))
	for i, id := range ids {
		edges[i] = g.Edges[id]
	}
	return edges
}

func joinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}
