package graph

import (
	"math"
)

// Weight converts a positive exchange rate and an optional fee factor into
// an additive edge weight: -ln(rate * (1 - fee)).
//
// A trade sequence is profitable iff the product of its rates exceeds 1.
// Taking -ln turns "product > 1" into "sum of weights < 0", so profit
// search becomes negative-cycle search.
func Weight(rate, fee float64) (float64, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, ErrInvalidRate
	}
	if fee < 0 || fee >= 1 || math.IsNaN(fee) {
		return 0, ErrInvalidFee
	}
	return -math.Log(rate * (1 - fee)), nil
}

// WeightToRate converts an edge weight back to its effective rate.
func WeightToRate(w float64) float64 {
	return math.Exp(-w)
}
