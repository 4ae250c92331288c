package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// Aggregator merges updates from multiple providers into a quote table
// and periodically emits immutable observation snapshots. The detector
// only ever sees a finished snapshot, never a feed mutating mid-run.
type Aggregator struct {
	providers []Provider
	interval  time.Duration
	stale     time.Duration
	log       *logrus.Entry

	mu     sync.RWMutex
	quotes map[string]Update // exchange + pair -> latest quote
}

// NewAggregator creates an aggregator emitting snapshots every interval.
// Quotes older than stale are excluded from snapshots; zero disables the
// staleness check.
func NewAggregator(interval, stale time.Duration, log *logrus.Logger) *Aggregator {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Aggregator{
		interval: interval,
		stale:    stale,
		log:      log.WithField("component", "aggregator"),
		quotes:   make(map[string]Update),
	}
}

// AddProvider registers a connected, subscribed provider.
func (a *Aggregator) AddProvider(p Provider) {
	a.providers = append(a.providers, p)
}

// Run consumes provider updates and invokes onSnapshot every interval
// with the current observation snapshot. It blocks until ctx is done.
func (a *Aggregator) Run(ctx context.Context, onSnapshot func([]types.Observation)) {
	for _, p := range a.providers {
		go a.consume(ctx, p)
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := a.Snapshot()
			if len(snapshot) == 0 {
				continue
			}
			onSnapshot(snapshot)
		}
	}
}

func (a *Aggregator) consume(ctx context.Context, p Provider) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-p.Updates():
			if !ok {
				return
			}
			a.record(u)
		case err, ok := <-p.Errors():
			if !ok {
				return
			}
			a.log.WithError(err).WithField("exchange", p.Name()).Warn("feed error")
		}
	}
}

func (a *Aggregator) record(u Update) {
	a.mu.Lock()
	a.quotes[u.Exchange+":"+u.Base+"/"+u.Quote] = u
	a.mu.Unlock()
}

// Snapshot converts the current quote table into observations. Each quote
// yields both trade directions: selling base hits the bid, buying base
// pays the ask, so the reverse rate is 1/ask. The two directions are NOT
// inverses of each other whenever there is a spread, which is exactly why
// the builder never synthesizes reverse edges on its own.
func (a *Aggregator) Snapshot() []types.Observation {
	fees := make(map[string]float64, len(a.providers))
	for _, p := range a.providers {
		fees[p.Name()] = p.Fee()
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	now := time.Now()
	observations := make([]types.Observation, 0, 2*len(a.quotes))
	for _, u := range a.quotes {
		if a.stale > 0 && now.Sub(u.Timestamp) > a.stale {
			continue
		}
		fee := fees[u.Exchange]
		observations = append(observations,
			types.Observation{Base: u.Base, Quote: u.Quote, Rate: u.Bid, Fee: fee},
			types.Observation{Base: u.Quote, Quote: u.Base, Rate: 1 / u.Ask, Fee: fee},
		)
	}
	return observations
}
