// Package types defines core data structures shared across the detector.
package types

import (
	"time"
)

// Observation is a single exchange rate quote: one unit of Base buys
// Rate units of Quote. Fee is an optional proportional cost in [0,1)
// applied to the trade; zero means no fee.
type Observation struct {
	Base  string  `json:"base"`
	Quote string  `json:"quote"`
	Rate  float64 `json:"rate"`
	Fee   float64 `json:"fee,omitempty"`
}

// Pair returns the observation's pair in "BASE/QUOTE" form.
func (o Observation) Pair() string {
	return o.Base + "/" + o.Quote
}

// Leg is one executed trade within an arbitrage cycle.
type Leg struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
	Fee  float64 `json:"fee,omitempty"`
}

// Opportunity is a detected arbitrage cycle with its realizable profit.
// Path starts and ends on the same currency; Multiplier is the compounded
// rate across all legs and is always > 1 for a reported opportunity.
type Opportunity struct {
	ID         string    `json:"id"`
	Path       []string  `json:"path"`
	Multiplier float64   `json:"multiplier"`
	ProfitBps  int       `json:"profit_bps"`
	Legs       []Leg     `json:"legs"`
	DetectedAt time.Time `json:"detected_at"`
}

// Hops returns the number of trades in the cycle.
func (o *Opportunity) Hops() int {
	if len(o.Path) == 0 {
		return 0
	}
	return len(o.Path) - 1
}
