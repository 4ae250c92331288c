// Package rates supplies observation snapshots to the detector: parsing
// spot-rate API responses, loading observation files, and fetching
// snapshots over HTTP.
package rates

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// Snapshot is a spot-rates API response: every rate is quoted against a
// single base currency.
type Snapshot struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

var (
	// ErrMissingBase reports a snapshot without a base currency.
	ErrMissingBase = errors.New("snapshot missing base currency")

	// ErrEmptyRates reports a snapshot with no rates.
	ErrEmptyRates = errors.New("snapshot has no rates")

	// ErrBaseInRates reports a snapshot quoting the base against itself.
	ErrBaseInRates = errors.New("base currency listed in its own rates")

	// ErrBadCurrencyCode reports a currency identifier that is not a
	// three-letter code.
	ErrBadCurrencyCode = errors.New("currency code must be three letters")

	// ErrBadRate reports a non-positive or non-finite rate in a snapshot.
	ErrBadRate = errors.New("rate must be a positive finite number")
)

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Expand converts a single-base snapshot into all-pairs observations via
// cross rates: the rate from c1 to c2 is rates[c2]/rates[c1], with the
// base itself participating at rate 1. All currency codes are validated
// and normalized to upper case; a fee, when given, applies to every
// synthesized observation.
//
// Cross rates are exact inverses of each other, so a snapshot alone never
// produces arbitrage; cycles appear when snapshots from multiple sources
// (or explicit bid/ask observations) are combined.
func (s *Snapshot) Expand(fee float64) ([]types.Observation, error) {
	if s.Base == "" {
		return nil, ErrMissingBase
	}
	if len(s.Rates) == 0 {
		return nil, ErrEmptyRates
	}

	base := strings.ToUpper(s.Base)
	if !currencyCodePattern.MatchString(base) {
		return nil, fmt.Errorf("base %q: %w", s.Base, ErrBadCurrencyCode)
	}

	normalized := make(map[string]float64, len(s.Rates)+1)
	for code, rate := range s.Rates {
		if !currencyCodePattern.MatchString(code) {
			return nil, fmt.Errorf("currency %q: %w", code, ErrBadCurrencyCode)
		}
		upper := strings.ToUpper(code)
		if upper == base {
			return nil, fmt.Errorf("base %s: %w", base, ErrBaseInRates)
		}
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return nil, fmt.Errorf("currency %s rate %v: %w", upper, rate, ErrBadRate)
		}
		normalized[upper] = rate
	}
	normalized[base] = 1.0

	codes := make([]string, 0, len(normalized))
	for code := range normalized {
		codes = append(codes, code)
	}

	observations := make([]types.Observation, 0, len(codes)*(len(codes)-1))
	for _, from := range codes {
		for _, to := range codes {
			if from == to {
				continue
			}
			observations = append(observations, types.Observation{
				Base:  from,
				Quote: to,
				Rate:  normalized[to] / normalized[from],
				Fee:   fee,
			})
		}
	}
	return observations, nil
}
