package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fedbatch/internal/dynamo"
)

func TestDefaultParamsValid(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	if p.VolumePolicy != Growing {
		t.Errorf("expected growing volume by default, got %s", p.VolumePolicy)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		valid  bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"no feed", func(p *Params) { p.FeedRate = 0 }, true},
		{"no product", func(p *Params) { p.ProductYield = 0 }, true},
		{"zero ks", func(p *Params) { p.HalfSaturation = 0 }, false},
		{"negative ks", func(p *Params) { p.HalfSaturation = -1 }, false},
		{"zero yield", func(p *Params) { p.BiomassYield = 0 }, false},
		{"zero dt", func(p *Params) { p.TimeStep = 0 }, false},
		{"zero mu max", func(p *Params) { p.MaxGrowthRate = 0 }, false},
		{"negative feed", func(p *Params) { p.FeedRate = -0.1 }, false},
		{"negative sf", func(p *Params) { p.FeedSubstrate = -1 }, false},
		{"negative ypx", func(p *Params) { p.ProductYield = -0.2 }, false},
		{"nan dt", func(p *Params) { p.TimeStep = math.NaN() }, false},
		{"inf feed", func(p *Params) { p.FeedRate = math.Inf(1) }, false},
		{"bad policy", func(p *Params) { p.VolumePolicy = VolumePolicy(7) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid {
				if err == nil {
					t.Error("expected error, got nil")
				} else if !errors.Is(err, dynamo.ErrInvalidParameter) {
					t.Errorf("expected ErrInvalidParameter, got %v", err)
				}
			}
		})
	}
}

func TestValidateInitial(t *testing.T) {
	if err := ValidateInitial(0.1, 0); err != nil {
		t.Errorf("expected zero substrate to be accepted: %v", err)
	}
	if err := ValidateInitial(-0.1, 20); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected negative biomass rejected, got %v", err)
	}
	if err := ValidateInitial(0.1, math.NaN()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected NaN substrate rejected, got %v", err)
	}
}

func TestParseVolumePolicy(t *testing.T) {
	tests := []struct {
		in       string
		expected VolumePolicy
		ok       bool
	}{
		{"growing", Growing, true},
		{"GROWING", Growing, true},
		{"constant", Constant, true},
		{" fixed ", Constant, true},
		{"", Growing, true},
		{"shrinking", Growing, false},
	}

	for _, tt := range tests {
		got, err := ParseVolumePolicy(tt.in)
		if tt.ok && (err != nil || got != tt.expected) {
			t.Errorf("ParseVolumePolicy(%q) = %v, %v", tt.in, got, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseVolumePolicy(%q) expected error", tt.in)
		}
	}
}

func TestVolumePolicyText(t *testing.T) {
	var p VolumePolicy
	if err := p.UnmarshalText([]byte("constant")); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if p != Constant {
		t.Errorf("expected constant, got %s", p)
	}
	text, _ := p.MarshalText()
	if string(text) != "constant" {
		t.Errorf("expected \"constant\", got %q", text)
	}
}
