package graph

import (
	"strings"
)

// cyclesFromFlagged materializes and deduplicates the cycles behind a set
// of still-improvable vertices. Several flagged vertices usually resolve
// to the same underlying cycle; rotations collapse via a canonical key.
func (g *Graph) cyclesFromFlagged(pred []int, flagged []int) ([]*Cycle, error) {
	var cycles []*Cycle
	seen := make(map[string]bool)

	for _, v := range flagged {
		c, err := g.extractCycle(pred, v)
		if err != nil {
			return nil, err
		}
		key := c.canonicalKey()
		if !seen[key] {
			seen[key] = true
			cycles = append(cycles, c)
		}
	}
	return cycles, nil
}

// extractCycle walks predecessor links from a flagged vertex to recover
// the negative cycle it sits on or downstream of. A negative cycle has at
// most |V| distinct vertices, so |V| steps always land inside it; a walk
// that runs off the predecessor chain instead signals a corrupted table.
func (g *Graph) extractCycle(pred []int, v int) (*Cycle, error) {
	n := len(g.currencies)

	// Step n times to guarantee we are on the cycle itself, not merely
	// downstream of it.
	cur := v
	for i := 0; i < n; i++ {
		e := pred[cur]
		if e < 0 {
			return nil, ErrCycleExtraction
		}
		cur = g.edges[e].From
	}

	// Collect edges backwards until the walk returns to the entry vertex.
	start := cur
	var backward []int
	for {
		e := pred[cur]
		if e < 0 || len(backward) > n {
			return nil, ErrCycleExtraction
		}
		backward = append(backward, e)
		cur = g.edges[e].From
		if cur == start {
			break
		}
	}

	// Reverse into forward trade order and materialize the path.
	c := &Cycle{
		Path:     make([]Currency, 0, len(backward)+1),
		EdgeIdxs: make([]int, 0, len(backward)),
	}
	for i := len(backward) - 1; i >= 0; i-- {
		c.EdgeIdxs = append(c.EdgeIdxs, backward[i])
		c.Path = append(c.Path, g.currencies[g.edges[backward[i]].From])
	}
	c.Path = append(c.Path, g.currencies[start])
	return c, nil
}

// canonicalKey builds a rotation-invariant identity for a cycle: the path
// rendered from its lexicographically smallest currency. [A,B,C,A] and
// [B,C,A,B] produce the same key.
func (c *Cycle) canonicalKey() string {
	nodes := c.Path[:len(c.Path)-1]
	n := len(nodes)
	if n == 0 {
		return ""
	}

	minIdx := 0
	for i := 1; i < n; i++ {
		if nodes[i] < nodes[minIdx] {
			minIdx = i
		}
	}

	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString("->")
		}
		sb.WriteString(string(nodes[(minIdx+i)%n]))
	}
	return sb.String()
}

// String renders the cycle in forward trade order.
func (c *Cycle) String() string {
	parts := make([]string, len(c.Path))
	for i, cur := range c.Path {
		parts[i] = string(cur)
	}
	return strings.Join(parts, " -> ")
}
