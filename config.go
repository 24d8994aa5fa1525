package glitter

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config collects the tunables a host usually wants in a file rather than in
// code. Fields missing from the YAML keep their DefaultConfig values.
type Config struct {
	Physics PhysicsConfig `yaml:"physics"`
	// MaxParticles is the per-system cap hosts pass to WithMaxParticles.
	MaxParticles int    `yaml:"max_particles"`
	Debug        bool   `yaml:"debug"`
	LogLevel     string `yaml:"log_level"`
	// TPS is the simulation rate. Physics constants assume 20.
	TPS int `yaml:"tps"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Physics:      DefaultPhysics,
		MaxParticles: 8192,
		LogLevel:     "info",
		TPS:          20,
	}
}

// LoadConfig reads YAML from r over DefaultConfig. An empty document yields
// the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports values no system can run with.
func (c Config) Validate() error {
	if c.MaxParticles < 0 {
		return errors.Errorf("config: max_particles must not be negative, got %d", c.MaxParticles)
	}
	if c.TPS <= 0 {
		return errors.Errorf("config: tps must be positive, got %d", c.TPS)
	}
	if c.Physics.Damping < 0 || c.Physics.Damping > 1 {
		return errors.Errorf("config: physics.damping must be in [0, 1], got %g", c.Physics.Damping)
	}
	if c.Physics.Friction < 0 || c.Physics.Friction > 1 {
		return errors.Errorf("config: physics.friction must be in [0, 1], got %g", c.Physics.Friction)
	}
	return nil
}
