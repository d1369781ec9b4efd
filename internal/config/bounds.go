package config

import "math"

// Range is the domain a frontend control allows for one parameter.
type Range struct {
	Key   string
	Label string
	Unit  string
	Min   float64
	Max   float64
}

func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Fraction maps v onto [0, 1] across the range.
func (r Range) Fraction(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (r.Clamp(v) - r.Min) / (r.Max - r.Min)
}

// Step nudges v by a fraction of the range width and clamps the result.
func (r Range) Step(v, fraction float64) float64 {
	return r.Clamp(v + fraction*(r.Max-r.Min))
}

const (
	KeyBiomass   = "x0"
	KeySubstrate = "s0"
	KeyMuMax     = "mu_max"
	KeyFeed      = "feed"
	KeyFeedConc  = "sf"
)

// Bounds lists the adjustable parameters in display order.
var Bounds = []Range{
	{Key: KeyBiomass, Label: "Initial biomass (X0)", Unit: "g/L", Min: 0.05, Max: 1.0},
	{Key: KeySubstrate, Label: "Initial substrate (S0)", Unit: "g/L", Min: 5, Max: 40},
	{Key: KeyMuMax, Label: "μmax", Unit: "1/h", Min: 0.1, Max: 0.8},
	{Key: KeyFeed, Label: "Feed rate F", Unit: "L/h", Min: 0.0, Max: 0.2},
	{Key: KeyFeedConc, Label: "Feed substrate Sf", Unit: "g/L", Min: 10, Max: 80},
}

func Bound(key string) (Range, bool) {
	for _, r := range Bounds {
		if r.Key == key {
			return r, true
		}
	}
	return Range{}, false
}

// Get returns the config value addressed by a Bounds key.
func (c *Config) Get(key string) float64 {
	switch key {
	case KeyBiomass:
		return c.Initial.Biomass
	case KeySubstrate:
		return c.Initial.Substrate
	case KeyMuMax:
		return c.Params.MaxGrowthRate
	case KeyFeed:
		return c.Params.FeedRate
	case KeyFeedConc:
		return c.Params.FeedSubstrate
	}
	return 0
}

// Set stores v, clamped to its range, under a Bounds key.
func (c *Config) Set(key string, v float64) {
	if r, ok := Bound(key); ok {
		v = r.Clamp(v)
	}
	switch key {
	case KeyBiomass:
		c.Initial.Biomass = v
	case KeySubstrate:
		c.Initial.Substrate = v
	case KeyMuMax:
		c.Params.MaxGrowthRate = v
	case KeyFeed:
		c.Params.FeedRate = v
	case KeyFeedConc:
		c.Params.FeedSubstrate = v
	}
}

// ClampToBounds forces every slider-controlled value into its range.
func (c *Config) ClampToBounds() {
	for _, r := range Bounds {
		c.Set(r.Key, c.Get(r.Key))
	}
}
