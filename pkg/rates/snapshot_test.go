package rates

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

func TestExpandCrossRates(t *testing.T) {
	s := &Snapshot{
		Base: "usd",
		Rates: map[string]float64{
			"eur": 0.9,
			"gbp": 0.8,
		},
	}

	observations, err := s.Expand(0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// 3 currencies -> 6 ordered pairs.
	if len(observations) != 6 {
		t.Fatalf("got %d observations, want 6", len(observations))
	}

	byPair := make(map[string]types.Observation, len(observations))
	for _, obs := range observations {
		byPair[obs.Pair()] = obs
	}

	tests := []struct {
		pair string
		want float64
	}{
		{"USD/EUR", 0.9},
		{"EUR/USD", 1 / 0.9},
		{"USD/GBP", 0.8},
		{"GBP/USD", 1 / 0.8},
		{"EUR/GBP", 0.8 / 0.9},
		{"GBP/EUR", 0.9 / 0.8},
	}
	for _, tt := range tests {
		obs, ok := byPair[tt.pair]
		if !ok {
			t.Errorf("pair %s missing", tt.pair)
			continue
		}
		if math.Abs(obs.Rate-tt.want) > 1e-12 {
			t.Errorf("pair %s rate = %v, want %v", tt.pair, obs.Rate, tt.want)
		}
	}
}

func TestExpandValidation(t *testing.T) {
	tests := []struct {
		name    string
		s       *Snapshot
		wantErr error
	}{
		{"missing base", &Snapshot{Rates: map[string]float64{"EUR": 1}}, ErrMissingBase},
		{"empty rates", &Snapshot{Base: "USD"}, ErrEmptyRates},
		{"base in rates", &Snapshot{Base: "USD", Rates: map[string]float64{"USD": 1}}, ErrBaseInRates},
		{"bad code", &Snapshot{Base: "USD", Rates: map[string]float64{"EURO": 1}}, ErrBadCurrencyCode},
		{"bad base code", &Snapshot{Base: "US", Rates: map[string]float64{"EUR": 1}}, ErrBadCurrencyCode},
		{"zero rate", &Snapshot{Base: "USD", Rates: map[string]float64{"EUR": 0}}, ErrBadRate},
		{"negative rate", &Snapshot{Base: "USD", Rates: map[string]float64{"EUR": -2}}, ErrBadRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Expand(0); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expand error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandAppliesFee(t *testing.T) {
	s := &Snapshot{Base: "USD", Rates: map[string]float64{"EUR": 0.9}}
	observations, err := s.Expand(0.002)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for _, obs := range observations {
		if obs.Fee != 0.002 {
			t.Errorf("pair %s fee = %v, want 0.002", obs.Pair(), obs.Fee)
		}
	}
}

func TestReadCSV(t *testing.T) {
	in := "base,quote,rate,fee\nUSD,EUR,0.9,\neur,gbp,0.85,0.001\n"
	observations, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(observations))
	}
	if observations[0].Pair() != "USD/EUR" || observations[0].Rate != 0.9 {
		t.Errorf("first observation = %+v", observations[0])
	}
	if observations[1].Pair() != "EUR/GBP" || observations[1].Fee != 0.001 {
		t.Errorf("second observation = %+v", observations[1])
	}
}

func TestReadJSON(t *testing.T) {
	in := `[{"base":"USD","quote":"EUR","rate":0.9},{"base":"EUR","quote":"USD","rate":1.12,"fee":0.001}]`
	observations, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(observations))
	}
	if observations[1].Fee != 0.001 {
		t.Errorf("fee = %v, want 0.001", observations[1].Fee)
	}
}

func TestClientFetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("base"); got != "USD" {
			t.Errorf("base query = %q, want USD", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.9,"GBP":0.8}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10)
	snapshot, err := c.FetchSnapshot(t.Context(), "usd")
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if snapshot.Base != "USD" || len(snapshot.Rates) != 2 {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestClientFetchSnapshotErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10)
	if _, err := c.FetchSnapshot(t.Context(), "USD"); err == nil {
		t.Fatal("FetchSnapshot succeeded on a 429 response")
	}
}
