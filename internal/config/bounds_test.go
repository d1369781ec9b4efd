package config

import (
	"math"
	"testing"
)

func TestBoundsTable(t *testing.T) {
	tests := []struct {
		key      string
		min, max float64
	}{
		{KeyBiomass, 0.05, 1.0},
		{KeySubstrate, 5, 40},
		{KeyMuMax, 0.1, 0.8},
		{KeyFeed, 0.0, 0.2},
		{KeyFeedConc, 10, 80},
	}

	for _, tt := range tests {
		r, ok := Bound(tt.key)
		if !ok {
			t.Fatalf("missing bound %s", tt.key)
		}
		if r.Min != tt.min || r.Max != tt.max {
			t.Errorf("%s: expected [%g, %g], got [%g, %g]", tt.key, tt.min, tt.max, r.Min, r.Max)
		}
	}

	if _, ok := Bound("dt"); ok {
		t.Error("dt should not be slider controlled")
	}
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: 5, Max: 40}

	tests := []struct {
		in, expected float64
	}{
		{20, 20},
		{1, 5},
		{100, 40},
		{math.NaN(), 5},
		{math.Inf(1), 40},
	}
	for _, tt := range tests {
		if got := r.Clamp(tt.in); got != tt.expected {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestRangeStepAndFraction(t *testing.T) {
	r := Range{Min: 0, Max: 0.2}

	if got := r.Step(0.1, 0.05); math.Abs(got-0.11) > 1e-12 {
		t.Errorf("expected 0.11, got %f", got)
	}
	if got := r.Step(0.19, 0.5); got != 0.2 {
		t.Errorf("expected clamp at 0.2, got %f", got)
	}
	if got := r.Fraction(0.05); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("expected 0.25, got %f", got)
	}
}

func TestConfigSetGet(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Set(KeyFeed, 0.15)
	if cfg.Params.FeedRate != 0.15 || cfg.Get(KeyFeed) != 0.15 {
		t.Errorf("feed not stored: %f", cfg.Params.FeedRate)
	}

	cfg.Set(KeyBiomass, 5)
	if cfg.Initial.Biomass != 1.0 {
		t.Errorf("expected biomass clamped to 1.0, got %f", cfg.Initial.Biomass)
	}
}

func TestClampToBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.MaxGrowthRate = 3
	cfg.Initial.Substrate = 0
	cfg.Params.FeedSubstrate = 500

	cfg.ClampToBounds()

	if cfg.Params.MaxGrowthRate != 0.8 {
		t.Errorf("mu_max: expected 0.8, got %f", cfg.Params.MaxGrowthRate)
	}
	if cfg.Initial.Substrate != 5 {
		t.Errorf("s0: expected 5, got %f", cfg.Initial.Substrate)
	}
	if cfg.Params.FeedSubstrate != 80 {
		t.Errorf("sf: expected 80, got %f", cfg.Params.FeedSubstrate)
	}
	if cfg.Params.HalfSaturation != 0.5 {
		t.Errorf("ks should be untouched, got %f", cfg.Params.HalfSaturation)
	}
}
