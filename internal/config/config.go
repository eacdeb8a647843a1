package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/boxsim/internal/dynamo"
)

const (
	DefaultParticles = 100
	DefaultBoxSize   = 10.0
	DefaultDt        = 0.01
	DefaultTMax      = 10.0
	DefaultVMax      = 1.0
	DefaultSeed      = 1
	DefaultForce     = "free"
	DefaultOutput    = "sim_001.txt"
	DefaultDataDir   = "data"
	DefaultSoftening = 0.05
)

// Environment variables read by ApplyEnv.
const (
	EnvParticles = "BOXSIM_PARTICLES"
	EnvBoxSize   = "BOXSIM_BOX_SIZE"
	EnvDt        = "BOXSIM_DT"
	EnvTMax      = "BOXSIM_T_MAX"
	EnvVMax      = "BOXSIM_V_MAX"
	EnvSeed      = "BOXSIM_SEED"
	EnvWorkers   = "BOXSIM_WORKERS"
	EnvForce     = "BOXSIM_FORCE"
)

type Config struct {
	Particles int          `yaml:"particles" validate:"gt=0"`
	BoxSize   float64      `yaml:"box_size" validate:"gt=0"`
	Dt        float64      `yaml:"dt" validate:"gt=0"`
	TMax      float64      `yaml:"t_max" validate:"gt=0"`
	VMax      float64      `yaml:"v_max" validate:"gte=0"`
	Seed      int64        `yaml:"seed"`
	Workers   int          `yaml:"workers" validate:"gte=0"`
	Force     ForceConfig  `yaml:"force"`
	Output    OutputConfig `yaml:"output"`
}

type ForceConfig struct {
	Law       string  `yaml:"law" validate:"required"`
	Strength  float64 `yaml:"strength"`
	Softening float64 `yaml:"softening" validate:"gte=0"`
	Stiffness float64 `yaml:"stiffness" validate:"gte=0"`
}

// OutputConfig selects where committed steps go. Empty fields are skipped.
type OutputConfig struct {
	Text    string `yaml:"text"`
	DataDir string `yaml:"data_dir"`
	SQLite  string `yaml:"sqlite"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func DefaultConfig() *Config {
	return &Config{
		Particles: DefaultParticles,
		BoxSize:   DefaultBoxSize,
		Dt:        DefaultDt,
		TMax:      DefaultTMax,
		VMax:      DefaultVMax,
		Seed:      DefaultSeed,
		Force: ForceConfig{
			Law:       DefaultForce,
			Softening: DefaultSoftening,
		},
		Output: OutputConfig{
			Text:    DefaultOutput,
			DataDir: DefaultDataDir,
		},
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

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from BOXSIM_* variables.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvParticles, &c.Particles},
		{EnvWorkers, &c.Workers},
	}
	for _, e := range ints {
		if v, ok := os.LookupEnv(e.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvBoxSize, &c.BoxSize},
		{EnvDt, &c.Dt},
		{EnvTMax, &c.TMax},
		{EnvVMax, &c.VMax},
	}
	for _, e := range floats {
		if v, ok := os.LookupEnv(e.key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = f
		}
	}

	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv(EnvForce); ok {
		c.Force.Law = v
	}
	return nil
}

// Validate checks struct tags and then the engine's own rules, so every
// failure wraps dynamo.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	return c.Run().Validate()
}

// Run projects the file configuration onto the engine's run parameters.
func (c *Config) Run() dynamo.Config {
	return dynamo.Config{
		N:       c.Particles,
		BoxSize: c.BoxSize,
		Dt:      c.Dt,
		TMax:    c.TMax,
		VMax:    c.VMax,
	}
}
