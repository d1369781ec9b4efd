package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fedbatch/internal/history"
	"github.com/san-kum/fedbatch/internal/models"
)

const (
	DefaultHours     = 24.0
	DefaultFrameRate = 30
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig   = "FEDBATCH_CONFIG"
	EnvPreset   = "FEDBATCH_PRESET"
	EnvLogLevel = "FEDBATCH_LOG_LEVEL"
)

type Config struct {
	Initial   InitialConfig   `yaml:"initial"`
	Params    models.Params   `yaml:"params"`
	History   history.Options `yaml:"history"`
	Hours     float64         `yaml:"hours"`
	FrameRate int             `yaml:"fps"`
}

type InitialConfig struct {
	Biomass   float64 `yaml:"biomass"`
	Substrate float64 `yaml:"substrate"`
}

func DefaultConfig() *Config {
	return &Config{
		Initial: InitialConfig{
			Biomass:   models.DefaultInitialBiomass,
			Substrate: models.DefaultInitialSubstrate,
		},
		Params:    models.DefaultParams(),
		Hours:     DefaultHours,
		FrameRate: DefaultFrameRate,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the process parameters and initial condition, plus the
// run-level settings.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if err := models.ValidateInitial(c.Initial.Biomass, c.Initial.Substrate); err != nil {
		return err
	}
	if c.Hours <= 0 {
		return fmt.Errorf("hours must be positive, got %g", c.Hours)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FrameRate)
	}
	return nil
}

// Clone returns a deep copy; presets are shared and must not be edited in place.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Env holds settings taken from the environment.
type Env struct {
	ConfigPath string
	Preset     string
	LogLevel   string
}

// LoadEnv reads .env style files into the process environment. Missing
// files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func ApplyEnv(getenv func(string) string) Env {
	return Env{
		ConfigPath: getenv(EnvConfig),
		Preset:     getenv(EnvPreset),
		LogLevel:   getenv(EnvLogLevel),
	}
}
