package graph

// Connection describes the shortest way two sets of CREs meet in the hierarchy.
type Connection struct {
	// Via is the CRE both sides reach: a shared CRE, an ancestor/descendant of
	// one side or a common ancestor/descendant of both.
	Via uint
	// Hops is the total number of internal links walked from both sides.
	Hops int
}

// Reach maps every CRE in the closure of a set of sources to its hop distance
// from the nearest source. Each walk goes only up or only down, so siblings
// meet at their common group and cousins at their common ancestor.
type Reach map[uint]int

// Reach computes the reach of sources.
func (g *Graph) Reach(sources []uint) Reach {
	reach := make(Reach)
	keep := func(id uint, d int) {
		if cur, ok := reach[id]; !ok || d < cur {
			reach[id] = d
		}
	}

	for _, s := range sources {
		keep(s, 0)
		for id, d := range walk(g.parents, s) {
			keep(id, d)
		}
		for id, d := range walk(g.children, s) {
			keep(id, d)
		}
	}
	return reach
}

// Meet returns the shortest connection between two reaches, ties going to the lowest id.
func (r Reach) Meet(other Reach) (Connection, bool) {
	small, large := r, other
	if len(large) < len(small) {
		small, large = large, small
	}

	best := Connection{Hops: -1}
	for id, hs := range small {
		hl, ok := large[id]
		if !ok {
			continue
		}
		hops := hs + hl
		if best.Hops < 0 || hops < best.Hops || (hops == best.Hops && id < best.Via) {
			best = Connection{Via: id, Hops: hops}
		}
	}

	if best.Hops < 0 {
		return Connection{}, false
	}
	return best, true
}
