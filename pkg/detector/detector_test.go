package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/graph"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

func TestDetectTriangle(t *testing.T) {
	obs := []types.Observation{
		{Base: "AAA", Quote: "BBB", Rate: 2.0},
		{Base: "BBB", Quote: "CCC", Rate: 2.0},
		{Base: "CCC", Quote: "AAA", Rate: 0.30},
	}

	for _, algo := range []Algorithm{AlgorithmBellmanFord, AlgorithmSPFA} {
		t.Run(string(algo), func(t *testing.T) {
			d := New(Config{Algorithm: algo}, nil)
			opps, err := d.Detect(obs)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if len(opps) != 1 {
				t.Fatalf("got %d opportunities, want 1", len(opps))
			}

			opp := opps[0]
			if math.Abs(opp.Multiplier-1.2) > 1e-6 {
				t.Errorf("multiplier = %v, want 1.2", opp.Multiplier)
			}
			if opp.Hops() != 3 {
				t.Errorf("hops = %d, want 3", opp.Hops())
			}
			if len(opp.Legs) != 3 {
				t.Fatalf("legs = %d, want 3", len(opp.Legs))
			}
			if opp.ID == "" {
				t.Error("opportunity ID is empty")
			}
			if opp.Path[0] != opp.Path[len(opp.Path)-1] {
				t.Errorf("path %v does not close", opp.Path)
			}
			for _, leg := range opp.Legs {
				if leg.Rate <= 0 {
					t.Errorf("leg %s -> %s has rate %v", leg.From, leg.To, leg.Rate)
				}
			}
		})
	}
}

func TestDetectEmptyResultWithoutArbitrage(t *testing.T) {
	d := New(Config{}, nil)
	opps, err := d.Detect([]types.Observation{
		{Base: "USD", Quote: "EUR", Rate: 0.9},
		{Base: "EUR", Quote: "USD", Rate: 1.0},
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("got %d opportunities, want 0", len(opps))
	}
}

func TestDetectInputErrors(t *testing.T) {
	d := New(Config{}, nil)

	if _, err := d.Detect(nil); !errors.Is(err, graph.ErrEmptyInput) {
		t.Errorf("Detect(nil) error = %v, want ErrEmptyInput", err)
	}

	_, err := d.Detect([]types.Observation{{Base: "USD", Quote: "EUR", Rate: -1}})
	if !errors.Is(err, graph.ErrInvalidRate) {
		t.Errorf("Detect(bad rate) error = %v, want ErrInvalidRate", err)
	}
}

func TestMarginalCycleDiscarded(t *testing.T) {
	// Product exactly 1: the pair is perfectly consistent. Even if the
	// log-domain test were to flag it, the recomputed multiplier must keep
	// it out of the results.
	d := New(Config{}, nil)
	opps, err := d.Detect([]types.Observation{
		{Base: "USD", Quote: "EUR", Rate: 0.8},
		{Base: "EUR", Quote: "USD", Rate: 1.25},
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("marginal cycle reported: %+v", opps[0])
	}
}

func TestFeesReduceProfit(t *testing.T) {
	base := []types.Observation{
		{Base: "AAA", Quote: "BBB", Rate: 2.0},
		{Base: "BBB", Quote: "CCC", Rate: 2.0},
		{Base: "CCC", Quote: "AAA", Rate: 0.30},
	}

	d := New(Config{}, nil)
	noFee, err := d.Detect(base)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	withFee := make([]types.Observation, len(base))
	copy(withFee, base)
	for i := range withFee {
		withFee[i].Fee = 0.01
	}
	feed, err := d.Detect(withFee)
	if err != nil {
		t.Fatalf("Detect with fees: %v", err)
	}

	if len(noFee) != 1 || len(feed) != 1 {
		t.Fatalf("got %d/%d opportunities, want 1/1", len(noFee), len(feed))
	}
	if feed[0].Multiplier >= noFee[0].Multiplier {
		t.Errorf("fee-adjusted multiplier %v not below fee-free %v",
			feed[0].Multiplier, noFee[0].Multiplier)
	}
	want := 1.2 * 0.99 * 0.99 * 0.99
	if math.Abs(feed[0].Multiplier-want) > 1e-6 {
		t.Errorf("fee-adjusted multiplier = %v, want %v", feed[0].Multiplier, want)
	}
}

func TestFeeErasesProfit(t *testing.T) {
	// 1.2 gross profit, but 10% fees per leg push the cycle under water.
	d := New(Config{}, nil)
	opps, err := d.Detect([]types.Observation{
		{Base: "AAA", Quote: "BBB", Rate: 2.0, Fee: 0.10},
		{Base: "BBB", Quote: "CCC", Rate: 2.0, Fee: 0.10},
		{Base: "CCC", Quote: "AAA", Rate: 0.30, Fee: 0.10},
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("got %d opportunities, want 0 (fees erase the edge)", len(opps))
	}
}

func TestMinProfitFloor(t *testing.T) {
	obs := []types.Observation{
		{Base: "AAA", Quote: "BBB", Rate: 2.0},
		{Base: "BBB", Quote: "CCC", Rate: 2.0},
		{Base: "CCC", Quote: "AAA", Rate: 0.2505}, // multiplier 1.002, 20 bps
	}

	low := New(Config{MinProfitBps: 10}, nil)
	opps, err := low.Detect(obs)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("floor 10 bps: got %d opportunities, want 1", len(opps))
	}

	high := New(Config{MinProfitBps: 100}, nil)
	opps, err = high.Detect(obs)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("floor 100 bps: got %d opportunities, want 0", len(opps))
	}
}

func TestStatsAccumulate(t *testing.T) {
	d := New(Config{}, nil)
	obs := []types.Observation{
		{Base: "AAA", Quote: "BBB", Rate: 2.0},
		{Base: "BBB", Quote: "AAA", Rate: 0.6},
	}

	for i := 0; i < 3; i++ {
		if _, err := d.Detect(obs); err != nil {
			t.Fatalf("Detect: %v", err)
		}
	}

	stats := d.Stats()
	if stats.Runs != 3 {
		t.Errorf("Runs = %d, want 3", stats.Runs)
	}
	if stats.OpportunitiesFound != 3 {
		t.Errorf("OpportunitiesFound = %d, want 3", stats.OpportunitiesFound)
	}
}
