package graph

import "sort"

// SCCs returns the graph's strongly connected components via Tarjan's
// algorithm, each component as a sorted slice of table names. Singleton
// components with no self-loop are "trivial" (not returned as cycles to
// break); TrivialSCC reports that case for a single-element component.
func (g *Graph) SCCs() [][]string {
	idx := 0
	indexOf := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var result [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indexOf[v] = idx
		lowlink[v] = idx
		idx++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range g.OutEdges(v) {
			w := e.Parent
			if _, ok := indexOf[w]; !ok {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indexOf[w] < lowlink[v] {
					lowlink[v] = indexOf[w]
				}
			}
		}

		if lowlink[v] == indexOf[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			result = append(result, comp)
		}
	}

	for _, v := range g.Nodes {
		if _, ok := indexOf[v]; !ok {
			strongconnect(v)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i][0] < result[j][0] })
	return result
}

// TrivialSCC reports whether a single-table component comp has no
// self-referential foreign key, i.e. it is not a cycle that needs
// breaking.
func (g *Graph) TrivialSCC(comp []string) bool {
	if len(comp) != 1 {
		return false
	}
	table := comp[0]
	for _, e := range g.OutEdges(table) {
		if e.Parent == table {
			return false
		}
	}
	return true
}
