// Package feed provides live exchange-rate feeds over WebSocket. Each
// provider streams ticker updates for subscribed pairs; the aggregator
// assembles immutable observation snapshots for the detector.
package feed

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ConnectionState represents a provider's connection state.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Update is a real-time best bid/ask quote for a pair.
type Update struct {
	Exchange  string
	Base      string
	Quote     string
	Bid       float64
	Ask       float64
	Timestamp time.Time
}

// Provider is a live exchange feed.
type Provider interface {
	// Name returns the exchange name.
	Name() string

	// Fee returns the proportional taker fee applied to trades on this
	// exchange, in [0, 1).
	Fee() float64

	// Connect establishes the feed connection.
	Connect(ctx context.Context) error

	// Disconnect closes the connection.
	Disconnect() error

	// Subscribe subscribes to ticker updates for "BASE/QUOTE" pairs.
	Subscribe(pairs []string) error

	// Updates returns the channel delivering quotes.
	Updates() <-chan Update

	// Errors returns the channel delivering stream errors.
	Errors() <-chan error

	// State returns the current connection state.
	State() ConnectionState
}

// SplitPair splits "BASE/QUOTE" into its currencies. ok is false when the
// pair is malformed.
func SplitPair(pair string) (base, quote string, ok bool) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), true
}

// baseProvider carries the state shared by all WebSocket providers.
type baseProvider struct {
	name    string
	fee     float64
	updates chan Update
	errors  chan error

	stateMu sync.RWMutex
	state   ConnectionState
}

func newBaseProvider(name string, fee float64) baseProvider {
	return baseProvider{
		name:    name,
		fee:     fee,
		updates: make(chan Update, 1024),
		errors:  make(chan error, 16),
	}
}

func (b *baseProvider) Name() string { return b.name }

func (b *baseProvider) Fee() float64 { return b.fee }

func (b *baseProvider) Updates() <-chan Update { return b.updates }

func (b *baseProvider) Errors() <-chan error { return b.errors }

func (b *baseProvider) State() ConnectionState {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.state
}

func (b *baseProvider) setState(s ConnectionState) {
	b.stateMu.Lock()
	b.state = s
	b.stateMu.Unlock()
}

// emit delivers an update without blocking the read loop; a full channel
// drops the quote, the next tick supersedes it anyway.
func (b *baseProvider) emit(u Update) {
	select {
	case b.updates <- u:
	default:
	}
}

func (b *baseProvider) emitErr(err error) {
	select {
	case b.errors <- err:
	default:
	}
}
