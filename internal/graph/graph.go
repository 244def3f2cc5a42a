// Package graph keeps the CRE hierarchy as an in-memory adjacency structure
// built from internal link rows. Edges point from a group to its child.
package graph

// Edge is a directed group -> child edge.
type Edge struct {
	Group uint
	Child uint
}

// Graph is a directed graph over CRE ids.
type Graph struct {
	children map[uint][]uint
	parents  map[uint][]uint
}

// New builds a graph from the given edges.
func New(edges []Edge) *Graph {
	g := &Graph{
		children: make(map[uint][]uint),
		parents:  make(map[uint][]uint),
	}
	for _, e := range edges {
		g.AddEdge(e.Group, e.Child)
	}
	return g
}

// AddEdge adds group -> child. Duplicate edges are ignored.
func (g *Graph) AddEdge(group, child uint) {
	for _, c := range g.children[group] {
		if c == child {
			return
		}
	}
	g.children[group] = append(g.children[group], child)
	g.parents[child] = append(g.parents[child], group)
}

// Reachable reports whether to can be reached from from following group -> child edges.
func (g *Graph) Reachable(from, to uint) bool {
	if from == to {
		return true
	}
	_, ok := walk(g.children, from)[to]
	return ok
}

// WouldCycle reports whether adding group -> child would close a cycle,
// i.e. group already is child or one of its descendants.
func (g *Graph) WouldCycle(group, child uint) bool {
	return g.Reachable(child, group)
}

// walk runs a breadth first search from start and returns the hop count of
// every node reached, start excluded.
func walk(adj map[uint][]uint, start uint) map[uint]int {
	dist := make(map[uint]int)
	queue := []uint{start}
	seen := map[uint]bool{start: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if seen[next] {
				continue
			}
			seen[next] = true
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}
