// Package detector orchestrates a full arbitrage detection run: graph
// construction, negative-cycle search, and profit reporting.
package detector

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/graph"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// Algorithm selects the negative-cycle engine.
type Algorithm string

const (
	AlgorithmBellmanFord Algorithm = "bellman-ford"
	AlgorithmSPFA        Algorithm = "spfa"
)

// profitEpsilon is the margin by which a recomputed multiplier must exceed
// 1 to be reported. Cycles inside this band flagged by the log-domain test
// are floating-point disagreements, not arbitrage.
var profitEpsilon = decimal.NewFromFloat(1e-6)

// Config holds detector settings.
type Config struct {
	// Algorithm picks the relaxation engine. Defaults to bellman-ford.
	Algorithm Algorithm

	// MinProfitBps drops opportunities below this profit floor. Zero keeps
	// everything the epsilon test admits.
	MinProfitBps int
}

// Detector runs detection over observation snapshots. It holds no state
// between runs beyond counters; every run builds and owns its graph and
// tables, so a single Detector is safe for concurrent Detect calls.
type Detector struct {
	cfg Config
	log *logrus.Entry

	statsMu sync.Mutex
	stats   Stats
}

// Stats counts detector activity across runs.
type Stats struct {
	Runs               int
	OpportunitiesFound int
	MarginalDiscarded  int
	LastRunAt          time.Time
}

// New creates a detector. A nil logger silences detector logging.
func New(cfg Config, log *logrus.Logger) *Detector {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmBellmanFord
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Detector{
		cfg: cfg,
		log: log.WithField("component", "detector"),
	}
}

// Detect builds a graph from the snapshot, finds negative cycles, and
// returns profit-annotated opportunities sorted by multiplier descending.
// Input errors (empty input, invalid rate or fee) surface immediately; an
// absence of arbitrage is a nil slice with no error.
func (d *Detector) Detect(observations []types.Observation) ([]*types.Opportunity, error) {
	g, err := graph.Build(observations)
	if err != nil {
		return nil, fmt.Errorf("building rate graph: %w", err)
	}

	var cycles []*graph.Cycle
	switch d.cfg.Algorithm {
	case AlgorithmSPFA:
		cycles, err = g.FindNegativeCyclesSPFA()
	default:
		cycles, err = g.FindNegativeCycles()
	}
	if err != nil {
		return nil, fmt.Errorf("negative cycle search: %w", err)
	}

	now := time.Now()
	var opportunities []*types.Opportunity
	marginal := 0
	for _, c := range cycles {
		opp, ok := d.report(g, c, now)
		if !ok {
			marginal++
			continue
		}
		if d.cfg.MinProfitBps > 0 && opp.ProfitBps < d.cfg.MinProfitBps {
			continue
		}
		opportunities = append(opportunities, opp)
	}

	sort.Slice(opportunities, func(i, j int) bool {
		return opportunities[i].Multiplier > opportunities[j].Multiplier
	})

	d.statsMu.Lock()
	d.stats.Runs++
	d.stats.OpportunitiesFound += len(opportunities)
	d.stats.MarginalDiscarded += marginal
	d.stats.LastRunAt = now
	d.statsMu.Unlock()

	d.log.WithFields(logrus.Fields{
		"currencies":    g.CurrencyCount(),
		"edges":         g.EdgeCount(),
		"cycles":        len(cycles),
		"opportunities": len(opportunities),
	}).Debug("detection run complete")

	return opportunities, nil
}

// report recomputes the cycle's profit multiplier from the original rates
// rather than the log-weights, so float error cannot compound through the
// transform. The product is taken in decimal arithmetic. A cycle whose
// recomputed multiplier is within epsilon of 1 (or below) is discarded as
// marginal rather than surfaced as a false positive.
func (d *Detector) report(g *graph.Graph, c *graph.Cycle, now time.Time) (*types.Opportunity, bool) {
	product := decimal.NewFromInt(1)
	legs := make([]types.Leg, 0, c.Hops())

	for i, cur := range c.Path[:len(c.Path)-1] {
		next := c.Path[i+1]
		e := g.EdgeBetween(cur, next)
		if e == nil {
			// Cannot happen for a cycle extracted from this graph.
			d.log.WithFields(logrus.Fields{"from": cur, "to": next}).
				Error("cycle references missing edge")
			return nil, false
		}
		effective := decimal.NewFromFloat(e.Rate)
		if e.Fee > 0 {
			effective = effective.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(e.Fee)))
		}
		product = product.Mul(effective)
		legs = append(legs, types.Leg{From: string(cur), To: string(next), Rate: e.Rate, Fee: e.Fee})
	}

	one := decimal.NewFromInt(1)
	if product.Sub(one).Cmp(profitEpsilon) <= 0 {
		d.log.WithFields(logrus.Fields{
			"cycle":      c.String(),
			"multiplier": product.String(),
		}).Info("marginal cycle discarded")
		return nil, false
	}

	multiplier, _ := product.Float64()
	profitBps := int(product.Sub(one).Mul(decimal.NewFromInt(10000)).IntPart())

	path := make([]string, len(c.Path))
	for i, cur := range c.Path {
		path[i] = string(cur)
	}

	return &types.Opportunity{
		ID:         uuid.NewString(),
		Path:       path,
		Multiplier: multiplier,
		ProfitBps:  profitBps,
		Legs:       legs,
		DetectedAt: now,
	}, true
}

// Stats returns a copy of the accumulated counters.
func (d *Detector) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}
