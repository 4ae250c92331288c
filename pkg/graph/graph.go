package graph

import (
	"fmt"
	"strings"
)

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index:     make(map[Currency]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// addCurrency adds a currency if not present and returns its index.
func (g *Graph) addCurrency(c Currency) int {
	if idx, ok := g.index[c]; ok {
		return idx
	}
	idx := len(g.currencies)
	g.currencies = append(g.currencies, c)
	g.index[c] = idx
	g.adj = append(g.adj, nil)
	return idx
}

// addEdge inserts a directed edge with a precomputed weight. When an edge
// for the same ordered pair already exists, the one with the lower weight
// wins: only the most favorable rate matters for arbitrage detection.
func (g *Graph) addEdge(from, to Currency, rate, fee, weight float64) {
	fromIdx := g.addCurrency(from)
	toIdx := g.addCurrency(to)

	key := edgeKey{fromIdx, toIdx}
	if idx, ok := g.edgeIndex[key]; ok {
		if weight < g.edges[idx].Weight {
			g.edges[idx].Rate = rate
			g.edges[idx].Fee = fee
			g.edges[idx].Weight = weight
		}
		return
	}

	idx := len(g.edges)
	g.edges = append(g.edges, Edge{From: fromIdx, To: toIdx, Rate: rate, Fee: fee, Weight: weight})
	g.edgeIndex[key] = idx
	g.adj[fromIdx] = append(g.adj[fromIdx], idx)
}

// Currencies returns all currencies in insertion order.
func (g *Graph) Currencies() []Currency {
	out := make([]Currency, len(g.currencies))
	copy(out, g.currencies)
	return out
}

// CurrencyCount returns the number of currencies.
func (g *Graph) CurrencyCount() int {
	return len(g.currencies)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// CurrencyByIndex returns the currency at the given index, or "" when out
// of range.
func (g *Graph) CurrencyByIndex(idx int) Currency {
	if idx < 0 || idx >= len(g.currencies) {
		return ""
	}
	return g.currencies[idx]
}

// EdgeBetween returns the edge for an ordered currency pair, or nil when
// no such edge exists.
func (g *Graph) EdgeBetween(from, to Currency) *Edge {
	fromIdx, ok := g.index[from]
	if !ok {
		return nil
	}
	toIdx, ok := g.index[to]
	if !ok {
		return nil
	}
	if idx, ok := g.edgeIndex[edgeKey{fromIdx, toIdx}]; ok {
		e := g.edges[idx]
		return &e
	}
	return nil
}

// String renders the graph for diagnostics.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph: %d currencies, %d edges\n", len(g.currencies), len(g.edges))
	for _, e := range g.edges {
		fmt.Fprintf(&sb, "  %s -> %s (rate=%.8f, fee=%.4f, weight=%.8f)\n",
			g.currencies[e.From], g.currencies[e.To], e.Rate, e.Fee, e.Weight)
	}
	return sb.String()
}
