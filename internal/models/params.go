package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/fedbatch/internal/dynamo"
)

// VolumePolicy selects how the culture volume responds to the feed stream.
type VolumePolicy int

const (
	// Growing accumulates feed into the vessel: dV/dt = F.
	Growing VolumePolicy = iota
	// Constant keeps V fixed; the feed only dilutes substrate.
	Constant
)

func (p VolumePolicy) String() string {
	switch p {
	case Growing:
		return "growing"
	case Constant:
		return "constant"
	default:
		return fmt.Sprintf("VolumePolicy(%d)", int(p))
	}
}

func ParseVolumePolicy(s string) (VolumePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "growing", "grow", "":
		return Growing, nil
	case "constant", "const", "fixed":
		return Constant, nil
	}
	return Growing, fmt.Errorf("%w: unknown volume policy %q", dynamo.ErrInvalidParameter, s)
}

func (p VolumePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *VolumePolicy) UnmarshalText(text []byte) error {
	v, err := ParseVolumePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Params holds the kinetic and feed parameters of a run.
type Params struct {
	MaxGrowthRate  float64      `yaml:"mu_max"`  // μmax, 1/h
	HalfSaturation float64      `yaml:"ks"`      // Ks, g/L
	BiomassYield   float64      `yaml:"yxs"`     // Yxs, g biomass / g substrate
	ProductYield   float64      `yaml:"ypx"`     // Ypx, g product / g biomass
	FeedRate       float64      `yaml:"feed"`    // F, L/h
	FeedSubstrate  float64      `yaml:"sf"`      // Sf, g/L
	TimeStep       float64      `yaml:"dt"`      // h
	VolumePolicy   VolumePolicy `yaml:"volume"`
}

const (
	DefaultMaxGrowthRate  = 0.4
	DefaultHalfSaturation = 0.5
	DefaultBiomassYield   = 0.5
	DefaultProductYield   = 0.2
	DefaultFeedRate       = 0.05
	DefaultFeedSubstrate  = 50.0
	DefaultTimeStep       = 0.03

	DefaultInitialBiomass   = 0.1
	DefaultInitialSubstrate = 20.0

	// InitialVolume is the working volume every run starts from, in litres.
	InitialVolume = 1.0
)

func DefaultParams() Params {
	return Params{
		MaxGrowthRate:  DefaultMaxGrowthRate,
		HalfSaturation: DefaultHalfSaturation,
		BiomassYield:   DefaultBiomassYield,
		ProductYield:   DefaultProductYield,
		FeedRate:       DefaultFeedRate,
		FeedSubstrate:  DefaultFeedSubstrate,
		TimeStep:       DefaultTimeStep,
		VolumePolicy:   Growing,
	}
}

// Validate reports the first parameter outside its physical domain.
func (p Params) Validate() error {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"mu_max", p.MaxGrowthRate, true},
		{"ks", p.HalfSaturation, true},
		{"yxs", p.BiomassYield, true},
		{"ypx", p.ProductYield, false},
		{"feed", p.FeedRate, false},
		{"sf", p.FeedSubstrate, false},
		{"dt", p.TimeStep, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s is not finite", dynamo.ErrInvalidParameter, c.name)
		}
		if c.positive && c.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrInvalidParameter, c.name, c.value)
		}
		if !c.positive && c.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %g", dynamo.ErrInvalidParameter, c.name, c.value)
		}
	}
	if p.VolumePolicy != Growing && p.VolumePolicy != Constant {
		return fmt.Errorf("%w: unknown volume policy %d", dynamo.ErrInvalidParameter, int(p.VolumePolicy))
	}
	return nil
}

// ValidateInitial checks initial biomass and substrate concentrations.
func ValidateInitial(x0, s0 float64) error {
	for _, c := range []struct {
		name  string
		value float64
	}{{"x0", x0}, {"s0", s0}} {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative concentration, got %g", dynamo.ErrInvalidParameter, c.name, c.value)
		}
	}
	return nil
}
