// Package graph implements negative-cycle arbitrage detection over a
// directed graph of exchange rates.
package graph

import (
	"errors"
	"fmt"
)

// Currency is a node in the rate graph, identified by its code.
type Currency string

// Edge is a directed trading path between two currencies. From and To
// index into the graph's currency arena. Rate is the original quoted
// rate; Weight is -ln(rate * (1 - fee)) and may be any real number.
type Edge struct {
	From   int
	To     int
	Rate   float64
	Fee    float64
	Weight float64
}

// Graph holds currencies and directed weighted edges using index-based
// adjacency lists. A Graph is built once per detection run and owned
// exclusively by that run; it is not safe for concurrent mutation.
type Graph struct {
	currencies []Currency
	index      map[Currency]int
	adj        [][]int // currency index -> outbound edge indices
	edges      []Edge
	edgeIndex  map[edgeKey]int
}

type edgeKey struct {
	from, to int
}

// Cycle is a closed sequence of currencies (first == last) together with
// the edge indices traversed, in forward trade order.
type Cycle struct {
	Path     []Currency
	EdgeIdxs []int
}

// Hops returns the number of trades in the cycle.
func (c *Cycle) Hops() int {
	return len(c.EdgeIdxs)
}

var (
	// ErrInvalidRate reports a non-positive (or non-finite) exchange rate.
	ErrInvalidRate = errors.New("rate must be a positive finite number")

	// ErrInvalidFee reports a fee factor outside [0, 1).
	ErrInvalidFee = errors.New("fee must be in [0, 1)")

	// ErrEmptyInput reports that no observations were supplied.
	ErrEmptyInput = errors.New("no rate observations supplied")

	// ErrSelfLoop reports an observation quoting a currency against itself.
	ErrSelfLoop = errors.New("observation base and quote are the same currency")

	// ErrCycleExtraction reports a corrupted predecessor table: a vertex was
	// flagged as improvable but walking its predecessors found no repeat.
	// This indicates an internal defect, not bad input.
	ErrCycleExtraction = errors.New("no cycle found walking predecessor links")
)

// InputError wraps a validation failure with the offending pair so the
// caller can report which observation was rejected.
type InputError struct {
	Base  string
	Quote string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid observation %s/%s: %v", e.Base, e.Quote, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
