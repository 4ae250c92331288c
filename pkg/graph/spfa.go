package graph

import (
	"github.com/badgerodon/collections/queue"
)

// FindNegativeCyclesSPFA is the queue-based variant of FindNegativeCycles:
// only vertices whose distance just decreased have their outbound edges
// relaxed, which skips the dead passes the round-based form performs on
// already-settled regions. Results are identical to FindNegativeCycles.
//
// A vertex enqueued more than |V| times must sit on a negative cycle (a
// shortest path without one relaxes each vertex at most |V|-1 times); such
// vertices are flagged and retired from the queue so the scan terminates.
func (g *Graph) FindNegativeCyclesSPFA() ([]*Cycle, error) {
	n := len(g.currencies)
	if n == 0 || len(g.edges) == 0 {
		return nil, nil
	}

	dist := make([]float64, n)
	pred := make([]int, n)
	enqueues := make([]int, n)
	inQueue := make([]bool, n)
	retired := make([]bool, n)
	for i := range pred {
		pred[i] = -1
	}

	// All distances start at zero (implicit synthetic source), so every
	// vertex begins active.
	q := queue.New()
	for v := 0; v < n; v++ {
		q.Enqueue(v)
		inQueue[v] = true
		enqueues[v] = 1
	}

	var flagged []int
	for q.Len() > 0 {
		u := q.Dequeue().(int)
		inQueue[u] = false
		if retired[u] {
			continue
		}

		for _, idx := range g.adj[u] {
			e := g.edges[idx]
			if dist[u]+e.Weight >= dist[e.To]-relaxEpsilon {
				continue
			}
			dist[e.To] = dist[u] + e.Weight
			pred[e.To] = idx

			if retired[e.To] || inQueue[e.To] {
				continue
			}
			enqueues[e.To]++
			if enqueues[e.To] > n {
				retired[e.To] = true
				flagged = append(flagged, e.To)
				continue
			}
			q.Enqueue(e.To)
			inQueue[e.To] = true
		}
	}

	return g.cyclesFromFlagged(pred, flagged)
}
