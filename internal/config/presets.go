package config

import (
	"sort"

	"github.com/san-kum/fedbatch/internal/models"
)

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"classic": DefaultConfig(),
	"batch": preset(func(c *Config) {
		c.Params.FeedRate = 0
	}),
	"high_feed": preset(func(c *Config) {
		c.Params.FeedRate = 0.2
		c.Params.FeedSubstrate = 80
	}),
	"slow_growth": preset(func(c *Config) {
		c.Params.MaxGrowthRate = 0.1
		c.Hours = 72
	}),
	"dense_inoculum": preset(func(c *Config) {
		c.Initial.Biomass = 1.0
		c.Initial.Substrate = 40
	}),
	"constant_volume": preset(func(c *Config) {
		c.Params.VolumePolicy = models.Constant
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
