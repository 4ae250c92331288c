package graph

import (
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// Build assembles a graph from rate observations. Observations are
// validated eagerly: a non-positive rate, out-of-range fee, or self-loop
// rejects the whole build rather than being silently dropped. Duplicate
// ordered pairs collapse to the single edge with the most favorable rate.
//
// Reverse edges are never synthesized from forward rates: real markets
// have asymmetric bid/ask spreads, so both directions must be observed
// explicitly to appear in the graph.
func Build(observations []types.Observation) (*Graph, error) {
	if len(observations) == 0 {
		return nil, ErrEmptyInput
	}

	g := New()
	for _, obs := range observations {
		if obs.Base == obs.Quote {
			return nil, &InputError{Base: obs.Base, Quote: obs.Quote, Err: ErrSelfLoop}
		}
		w, err := Weight(obs.Rate, obs.Fee)
		if err != nil {
			return nil, &InputError{Base: obs.Base, Quote: obs.Quote, Err: err}
		}
		g.addEdge(Currency(obs.Base), Currency(obs.Quote), obs.Rate, obs.Fee, w)
	}
	return g, nil
}
