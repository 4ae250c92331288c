package feed

import (
	"context"
	"testing"
	"time"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// fakeProvider feeds canned updates for aggregator tests.
type fakeProvider struct {
	baseProvider
}

func newFakeProvider(name string, fee float64) *fakeProvider {
	return &fakeProvider{baseProvider: newBaseProvider(name, fee)}
}

func (f *fakeProvider) Connect(context.Context) error { return nil }
func (f *fakeProvider) Disconnect() error             { return nil }
func (f *fakeProvider) Subscribe([]string) error      { return nil }
func (f *fakeProvider) push(u Update)                 { f.updates <- u }

func TestSplitPair(t *testing.T) {
	tests := []struct {
		in          string
		base, quote string
		ok          bool
	}{
		{"BTC/USDT", "BTC", "USDT", true},
		{"eth/btc", "ETH", "BTC", true},
		{"BTCUSDT", "", "", false},
		{"/USD", "", "", false},
		{"BTC/", "", "", false},
	}
	for _, tt := range tests {
		base, quote, ok := SplitPair(tt.in)
		if base != tt.base || quote != tt.quote || ok != tt.ok {
			t.Errorf("SplitPair(%q) = %q, %q, %v; want %q, %q, %v",
				tt.in, base, quote, ok, tt.base, tt.quote, tt.ok)
		}
	}
}

func TestSnapshotBothDirections(t *testing.T) {
	p := newFakeProvider("testex", 0.001)
	a := NewAggregator(time.Second, 0, nil)
	a.AddProvider(p)

	a.record(Update{
		Exchange: "testex", Base: "BTC", Quote: "USDT",
		Bid: 50000, Ask: 50100, Timestamp: time.Now(),
	})

	snapshot := a.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d observations, want 2", len(snapshot))
	}

	byPair := make(map[string]types.Observation)
	for _, obs := range snapshot {
		byPair[obs.Pair()] = obs
	}

	sell, ok := byPair["BTC/USDT"]
	if !ok || sell.Rate != 50000 {
		t.Errorf("sell direction = %+v", sell)
	}
	buy, ok := byPair["USDT/BTC"]
	if !ok || buy.Rate != 1.0/50100 {
		t.Errorf("buy direction = %+v", buy)
	}
	if sell.Fee != 0.001 || buy.Fee != 0.001 {
		t.Errorf("fees = %v/%v, want 0.001", sell.Fee, buy.Fee)
	}
	// With a spread, the directions must not be inverses.
	if sell.Rate*buy.Rate >= 1 {
		t.Errorf("spread lost: %v * %v >= 1", sell.Rate, buy.Rate)
	}
}

func TestSnapshotDropsStaleQuotes(t *testing.T) {
	p := newFakeProvider("testex", 0)
	a := NewAggregator(time.Second, 50*time.Millisecond, nil)
	a.AddProvider(p)

	a.record(Update{
		Exchange: "testex", Base: "BTC", Quote: "USDT",
		Bid: 50000, Ask: 50100, Timestamp: time.Now().Add(-time.Second),
	})
	a.record(Update{
		Exchange: "testex", Base: "ETH", Quote: "USDT",
		Bid: 3000, Ask: 3001, Timestamp: time.Now(),
	})

	snapshot := a.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d observations, want 2 (stale pair dropped)", len(snapshot))
	}
	for _, obs := range snapshot {
		if obs.Base == "BTC" || obs.Quote == "BTC" {
			t.Errorf("stale BTC quote survived: %+v", obs)
		}
	}
}

func TestRunEmitsSnapshots(t *testing.T) {
	p := newFakeProvider("testex", 0)
	a := NewAggregator(20*time.Millisecond, 0, nil)
	a.AddProvider(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan []types.Observation, 1)
	go a.Run(ctx, func(obs []types.Observation) {
		select {
		case snapshots <- obs:
		default:
		}
	})

	p.push(Update{
		Exchange: "testex", Base: "BTC", Quote: "USDT",
		Bid: 50000, Ask: 50100, Timestamp: time.Now(),
	})

	select {
	case obs := <-snapshots:
		if len(obs) != 2 {
			t.Errorf("snapshot has %d observations, want 2", len(obs))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot emitted")
	}
}

func TestLatestQuoteWins(t *testing.T) {
	p := newFakeProvider("testex", 0)
	a := NewAggregator(time.Second, 0, nil)
	a.AddProvider(p)

	a.record(Update{Exchange: "testex", Base: "BTC", Quote: "USDT", Bid: 50000, Ask: 50100, Timestamp: time.Now()})
	a.record(Update{Exchange: "testex", Base: "BTC", Quote: "USDT", Bid: 51000, Ask: 51100, Timestamp: time.Now()})

	for _, obs := range a.Snapshot() {
		if obs.Pair() == "BTC/USDT" && obs.Rate != 51000 {
			t.Errorf("rate = %v, want latest 51000", obs.Rate)
		}
	}
}
