package graph

// relaxEpsilon is the minimum decrease for a relaxation to count as an
// improvement. Cycles whose true weight sum is exactly zero would otherwise
// oscillate on floating-point noise and surface as spurious negative cycles.
const relaxEpsilon = 1e-9

// FindNegativeCycles runs the Bellman-Ford relaxation over the whole graph
// and returns every distinct negative cycle, deduplicated across rotations.
// An empty result means no arbitrage exists; it is not an error.
//
// Instead of adding an explicit synthetic source with zero-weight edges to
// every currency, all distances start at zero. The two are equivalent: one
// relaxation round from such a source would set every distance to zero
// anyway, and starting there makes every negative cycle reachable
// regardless of connectivity.
func (g *Graph) FindNegativeCycles() ([]*Cycle, error) {
	n := len(g.currencies)
	if n == 0 || len(g.edges) == 0 {
		return nil, nil
	}

	dist := make([]float64, n)
	pred := make([]int, n)
	for i := range pred {
		pred[i] = -1
	}

	// Any simple shortest path has at most n-1 edges, so n-1 full passes
	// converge in the absence of negative cycles. Stop early once a full
	// pass makes no improvement.
	for round := 0; round < n-1; round++ {
		improved := false
		for idx, e := range g.edges {
			if dist[e.From]+e.Weight < dist[e.To]-relaxEpsilon {
				dist[e.To] = dist[e.From] + e.Weight
				pred[e.To] = idx
				improved = true
			}
		}
		if !improved {
			return nil, nil
		}
	}

	// Detection pass: any edge that can still relax puts its head on or
	// downstream of a negative cycle.
	var flagged []int
	seen := make([]bool, n)
	for idx, e := range g.edges {
		if dist[e.From]+e.Weight < dist[e.To]-relaxEpsilon {
			if !seen[e.To] {
				seen[e.To] = true
				flagged = append(flagged, e.To)
			}
			pred[e.To] = idx
		}
	}

	return g.cyclesFromFlagged(pred, flagged)
}
