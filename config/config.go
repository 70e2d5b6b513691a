// Package config provides configuration loading and access for the
// crowd simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/throng/flowfield"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Field     FieldConfig     `yaml:"field"`
	Crowd     CrowdConfig     `yaml:"crowd"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds the fixed-step parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// FieldConfig holds the flow-field tuning parameters. Values mirror
// flowfield.Params plus the grid cell size; see FieldParams.
type FieldConfig struct {
	CellSize                  float64 `yaml:"cell_size"`
	RepulsionRadius           float64 `yaml:"repulsion_radius"`
	RepulsionStrength         float64 `yaml:"repulsion_strength"`
	ObstacleRepulsionRadius   float64 `yaml:"obstacle_repulsion_radius"`
	ObstacleRepulsionStrength float64 `yaml:"obstacle_repulsion_strength"`
	FrontMultiplier           float64 `yaml:"front_multiplier"`
	TopBottomMultiplier       float64 `yaml:"top_bottom_multiplier"`
	BackMultiplier            float64 `yaml:"back_multiplier"`
	GoalWeight                float64 `yaml:"goal_weight"`
	MinRepulsionDistance      float64 `yaml:"min_repulsion_distance"`
	SmoothingFactor           float64 `yaml:"smoothing_factor"`
}

// CrowdConfig holds agent behavior parameters outside the field.
type CrowdConfig struct {
	ArrivalMargin float64 `yaml:"arrival_margin"` // distance from goal segment that counts as arrived
	Respawn       bool    `yaml:"respawn"`        // respawn arrived agents in the spawn band
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks parameter ranges beyond what the field itself
// validates.
func (c *Config) Validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Field.CellSize <= 0 {
		return fmt.Errorf("field.cell_size must be positive, got %v", c.Field.CellSize)
	}
	if c.Crowd.ArrivalMargin < 0 {
		return fmt.Errorf("crowd.arrival_margin must be non-negative, got %v", c.Crowd.ArrivalMargin)
	}
	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("telemetry.stats_window must be positive, got %v", c.Telemetry.StatsWindow)
	}
	if err := c.FieldParams().Validate(); err != nil {
		return fmt.Errorf("field: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// FieldParams converts the field section to engine parameters.
func (c *Config) FieldParams() flowfield.Params {
	f := c.Field
	return flowfield.Params{
		RepulsionRadius:           float32(f.RepulsionRadius),
		RepulsionStrength:         float32(f.RepulsionStrength),
		ObstacleRepulsionRadius:   float32(f.ObstacleRepulsionRadius),
		ObstacleRepulsionStrength: float32(f.ObstacleRepulsionStrength),
		FrontMultiplier:           float32(f.FrontMultiplier),
		TopBottomMultiplier:       float32(f.TopBottomMultiplier),
		BackMultiplier:            float32(f.BackMultiplier),
		GoalWeight:                float32(f.GoalWeight),
		MinRepulsionDistance:      float32(f.MinRepulsionDistance),
		SmoothingFactor:           float32(f.SmoothingFactor),
	}
}

// SetFieldParams writes engine parameters back into the field section.
// Used by the tuner to persist optimized values.
func (c *Config) SetFieldParams(p flowfield.Params) {
	c.Field.RepulsionRadius = float64(p.RepulsionRadius)
	c.Field.RepulsionStrength = float64(p.RepulsionStrength)
	c.Field.ObstacleRepulsionRadius = float64(p.ObstacleRepulsionRadius)
	c.Field.ObstacleRepulsionStrength = float64(p.ObstacleRepulsionStrength)
	c.Field.FrontMultiplier = float64(p.FrontMultiplier)
	c.Field.TopBottomMultiplier = float64(p.TopBottomMultiplier)
	c.Field.BackMultiplier = float64(p.BackMultiplier)
	c.Field.GoalWeight = float64(p.GoalWeight)
	c.Field.MinRepulsionDistance = float64(p.MinRepulsionDistance)
	c.Field.SmoothingFactor = float64(p.SmoothingFactor)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
