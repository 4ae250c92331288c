package graph

import (
	"errors"
	"math"
	"testing"
)

func TestWeight(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		fee     float64
		want    float64
		wantErr error
	}{
		{name: "unit rate", rate: 1.0, want: 0},
		{name: "favorable rate", rate: 2.0, want: -math.Log(2.0)},
		{name: "unfavorable rate", rate: 0.5, want: math.Log(2.0)},
		{name: "rate with fee", rate: 2.0, fee: 0.01, want: -math.Log(2.0 * 0.99)},
		{name: "zero rate", rate: 0, wantErr: ErrInvalidRate},
		{name: "negative rate", rate: -1.5, wantErr: ErrInvalidRate},
		{name: "NaN rate", rate: math.NaN(), wantErr: ErrInvalidRate},
		{name: "infinite rate", rate: math.Inf(1), wantErr: ErrInvalidRate},
		{name: "negative fee", rate: 1.0, fee: -0.1, wantErr: ErrInvalidFee},
		{name: "fee of one", rate: 1.0, fee: 1.0, wantErr: ErrInvalidFee},
		{name: "fee above one", rate: 1.0, fee: 1.5, wantErr: ErrInvalidFee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Weight(tt.rate, tt.fee)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Weight(%v, %v) error = %v, want %v", tt.rate, tt.fee, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Weight(%v, %v) unexpected error: %v", tt.rate, tt.fee, err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Weight(%v, %v) = %v, want %v", tt.rate, tt.fee, got, tt.want)
			}
		})
	}
}

func TestWeightToRateRoundTrip(t *testing.T) {
	for _, rate := range []float64{0.0001, 0.5, 1.0, 1.2, 42.0} {
		w, err := Weight(rate, 0)
		if err != nil {
			t.Fatalf("Weight(%v, 0) unexpected error: %v", rate, err)
		}
		if got := WeightToRate(w); math.Abs(got-rate) > 1e-9*rate {
			t.Errorf("WeightToRate(Weight(%v)) = %v", rate, got)
		}
	}
}
